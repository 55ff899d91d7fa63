package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusAbandoned PaymentStatus = "abandoned"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// IsTerminal reports whether no further automatic transition is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

// IsKnown reports whether s is one of the defined lifecycle states
func (s PaymentStatus) IsKnown() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusAbandoned, PaymentStatusRefunded:
		return true
	}
	return false
}

// JSONB stores raw gateway payloads
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}

// PaymentRecord represents one payment attempt. Records are created pending,
// settled to a terminal state exactly once in effect, and never deleted
// (financial audit trail). Reference, customer and program fields are
// immutable after creation; terminal fields are sourced exclusively from the
// gateway's response payload.
type PaymentRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference string `gorm:"uniqueIndex;not null;size:64" json:"reference"`

	// Student information
	Email     string `gorm:"not null;size:255;index:idx_payment_records_email_status,priority:1" json:"email"`
	FirstName string `gorm:"not null;size:100" json:"first_name"`
	LastName  string `gorm:"not null;size:100" json:"last_name"`
	Phone     string `gorm:"not null;size:20" json:"phone"`

	// Program information, captured from the server-side catalog at creation
	ProgramID   string `gorm:"not null;size:100;index:idx_payment_records_program_status,priority:1" json:"program_id"`
	ProgramName string `gorm:"not null;size:200" json:"program_name"`

	// Amount in minor currency units (kobo). Never a float.
	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"size:3;default:'NGN'" json:"currency"`

	Status PaymentStatus `gorm:"size:20;not null;default:'pending';index:idx_payment_records_email_status,priority:2;index:idx_payment_records_program_status,priority:2" json:"status"`

	// Terminal fields, populated only from the gateway response
	Channel              *string    `gorm:"size:50" json:"channel,omitempty"`
	GatewayResponse      *string    `json:"gateway_response,omitempty"`
	GatewayTransactionID *int64     `json:"gateway_transaction_id,omitempty"`
	GatewayPayload       JSONB      `gorm:"type:jsonb" json:"gateway_payload,omitempty"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`

	// Webhook processing audit
	WebhookProcessedAt *time.Time `json:"webhook_processed_at,omitempty"`
	WebhookAttempts    int        `gorm:"default:0" json:"webhook_attempts"`

	// Request audit trail
	IPAddress *string `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent *string `gorm:"size:500" json:"user_agent,omitempty"`

	AdminNotes *string `json:"admin_notes,omitempty"`

	CreatedAt time.Time `gorm:"default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// FullName returns the student's display name
func (p *PaymentRecord) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AmountMajor converts the stored minor-unit amount to major units (naira)
// without touching floating point.
func (p *PaymentRecord) AmountMajor() decimal.Decimal {
	return KoboToMajor(p.Amount)
}

// KoboToMajor converts a kobo amount to naira
func KoboToMajor(kobo int64) decimal.Decimal {
	return decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100))
}
