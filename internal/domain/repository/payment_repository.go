package repository

import (
	"context"
	"time"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
)

// ListFilters narrows admin payment listings
type ListFilters struct {
	Status    model.PaymentStatus
	Email     string
	ProgramID string
	Limit     int
	Offset    int
}

// StatusStat aggregates records per status
type StatusStat struct {
	Status model.PaymentStatus `json:"status"`
	Count  int64               `json:"count"`
	Amount int64               `json:"amount"` // minor units
}

// PaymentRepository persists payment records. Terminal-state writes are
// conditional updates guarded on the current status: when two callers race to
// settle the same record, one write takes effect and the other becomes a
// no-op. All mutating operations bump webhook_attempts whether or not the
// underlying state changed, so duplicate-delivery rate stays observable.
type PaymentRepository interface {
	// Create inserts a new pending record. Returns ErrDuplicateReference when
	// the reference already exists.
	Create(ctx context.Context, record *model.PaymentRecord) error

	// FindByReference returns ErrPaymentNotFound when no record matches.
	FindByReference(ctx context.Context, ref string) (*model.PaymentRecord, error)

	// MarkCompleted settles a pending record with the gateway's payload. A
	// no-op on records already completed.
	MarkCompleted(ctx context.Context, ref string, res *provider.VerifyResponse) (*model.PaymentRecord, error)

	// MarkFailed settles a pending record with the gateway's failure reason.
	MarkFailed(ctx context.Context, ref string, reason string) (*model.PaymentRecord, error)

	// MarkAbandoned settles a pending record the customer walked away from.
	MarkAbandoned(ctx context.Context, ref string) (*model.PaymentRecord, error)

	// MarkRefunded moves a completed record to refunded with an audit note.
	MarkRefunded(ctx context.Context, ref string, note string) (*model.PaymentRecord, error)

	// List supports the admin reporting surface.
	List(ctx context.Context, filters ListFilters) ([]*model.PaymentRecord, int64, error)

	// Stats aggregates counts and amounts per status.
	Stats(ctx context.Context) ([]StatusStat, error)

	// FindStalePending returns pending records created before cutoff, oldest
	// first, for the reconciliation sweep.
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.PaymentRecord, error)
}
