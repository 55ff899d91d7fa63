package model

import (
	"time"
)

// GatewayWebhookEvent is the audit record for one inbound gateway callback.
// Events are stored after signature verification succeeds, before dispatch,
// so duplicate-delivery rate and unmatched references can be measured.
type GatewayWebhookEvent struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	EventType string     `gorm:"not null;size:100;index" json:"event_type"`
	Reference string     `gorm:"size:64;index" json:"reference"`
	Data      JSONB      `gorm:"type:jsonb;not null" json:"data"`
	Outcome   string     `gorm:"size:50" json:"outcome"`
	CreatedAt time.Time  `gorm:"default:now()" json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// Dispatch outcomes recorded on webhook events.
const (
	WebhookOutcomeApplied   = "applied"    // state transition written
	WebhookOutcomeDuplicate = "duplicate"  // record already terminal
	WebhookOutcomeUnmatched = "unmatched"  // no record for the reference
	WebhookOutcomeIgnored   = "ignored"    // unknown or unhandled event type
	WebhookOutcomeError     = "error"      // internal failure, logged and acked
)

// TableName specifies the table name for GORM
func (GatewayWebhookEvent) TableName() string {
	return "gateway_webhook_events"
}
