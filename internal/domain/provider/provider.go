package provider

import (
	"context"
	"time"
)

// Gateway defines the outbound contract with the external payment provider.
// Both operations are network calls and must be treated as unreliable;
// failures surface as *GatewayError, never as panics.
type Gateway interface {
	// Initialize creates a transaction at the provider and returns the hosted
	// checkout URL. Called once per payment record, immediately after the
	// local create.
	Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error)

	// Verify re-reads the provider-side status for a reference. Safe to call
	// repeatedly; it only reports, never mutates.
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}

// InitializeRequest is the provider-agnostic transaction initialization input
type InitializeRequest struct {
	Reference   string
	Email       string
	Amount      int64 // minor units
	CallbackURL string
	Metadata    map[string]interface{}
	Channels    []string
}

// InitializeResponse carries the hosted checkout handle
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// TxStatus is the provider-side transaction status
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusSuccess   TxStatus = "success"
	TxStatusFailed    TxStatus = "failed"
	TxStatusAbandoned TxStatus = "abandoned"
)

// VerifyResponse is the provider's current view of a transaction
type VerifyResponse struct {
	Status          TxStatus
	Reference       string
	Amount          int64
	Currency        string
	Channel         string
	GatewayResponse string
	TransactionID   int64
	PaidAt          *time.Time
	CustomerEmail   string
	RawPayload      map[string]interface{}
}

// GatewayError is a typed provider failure. Retryable errors (network,
// timeout, 5xx) leave local state untouched; terminal errors (4xx) indicate a
// configuration or request problem worth escalating to an operator.
type GatewayError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// IsRetryable reports whether err is a retryable gateway failure.
func IsRetryable(err error) bool {
	ge, ok := err.(*GatewayError)
	return ok && ge.Retryable
}
