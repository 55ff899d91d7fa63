package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domainErrors "github.com/highcrestlabs/academy-payments/internal/domain/errors"
	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
	"github.com/highcrestlabs/academy-payments/internal/reference"
)

// VerificationOutcome is what a verification caller learns about a payment
type VerificationOutcome struct {
	Status  string // success, pending, failed, abandoned, refunded
	Message string
	Record  *model.PaymentRecord
}

// VerificationService decides, given current record state, whether to trust
// the local record or re-query the gateway. Both the post-redirect polling
// endpoint and the admin re-verify endpoint run this same logic, so the two
// callers cannot diverge. A completed record is never re-queried and never
// regressed.
type VerificationService struct {
	payments repository.PaymentRepository
	gateway  provider.Gateway
	logger   *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	payments repository.PaymentRepository,
	gateway provider.Gateway,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		payments: payments,
		gateway:  gateway,
		logger:   logger,
	}
}

// Verify resolves the current status of a payment reference. Gateway
// unavailability is reported as still-pending, never as payment failure.
func (s *VerificationService) Verify(ctx context.Context, ref string) (*VerificationOutcome, error) {
	// Reject untrusted references before any storage lookup
	if !reference.IsValid(ref) {
		return nil, domainErrors.ErrInvalidReference
	}

	record, err := s.payments.FindByReference(ctx, ref)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case model.PaymentStatusCompleted:
		// Local record is the source of truth once settled; skip the gateway
		return &VerificationOutcome{Status: "success", Record: record}, nil

	case model.PaymentStatusPending:
		return s.verifyPending(ctx, record)

	case model.PaymentStatusFailed:
		message := "Payment failed"
		if record.GatewayResponse != nil && *record.GatewayResponse != "" {
			message = *record.GatewayResponse
		}
		return &VerificationOutcome{Status: "failed", Message: message, Record: record}, nil

	default: // abandoned, refunded
		return &VerificationOutcome{
			Status:  string(record.Status),
			Message: "Payment " + string(record.Status),
			Record:  record,
		}, nil
	}
}

func (s *VerificationService) verifyPending(ctx context.Context, record *model.PaymentRecord) (*VerificationOutcome, error) {
	res, err := s.gateway.Verify(ctx, record.Reference)
	if err != nil {
		// The record stays untouched: the gateway not answering says nothing
		// about whether the customer paid.
		var gerr *provider.GatewayError
		if errors.As(err, &gerr) && !gerr.Retryable {
			s.logger.Error("Gateway rejected verification request, check configuration",
				zap.String("reference", record.Reference),
				zap.String("code", gerr.Code),
				zap.String("message", gerr.Message))
		} else {
			s.logger.Warn("Gateway verification unavailable",
				zap.String("reference", record.Reference),
				zap.Error(err))
		}
		return stillPending(record), nil
	}

	switch res.Status {
	case provider.TxStatusSuccess:
		updated, err := s.payments.MarkCompleted(ctx, record.Reference, res)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Payment verified as completed",
			zap.String("reference", record.Reference),
			zap.Int64("amount", updated.Amount),
			zap.String("channel", res.Channel))
		return &VerificationOutcome{Status: "success", Record: updated}, nil

	case provider.TxStatusAbandoned:
		updated, err := s.payments.MarkAbandoned(ctx, record.Reference)
		if err != nil {
			return nil, err
		}
		return &VerificationOutcome{Status: "abandoned", Message: "Payment was abandoned", Record: updated}, nil

	case provider.TxStatusFailed:
		reason := res.GatewayResponse
		if reason == "" {
			reason = "Payment failed"
		}
		updated, err := s.payments.MarkFailed(ctx, record.Reference, reason)
		if err != nil {
			return nil, err
		}
		return &VerificationOutcome{Status: "failed", Message: reason, Record: updated}, nil

	default:
		return stillPending(record), nil
	}
}

func stillPending(record *model.PaymentRecord) *VerificationOutcome {
	return &VerificationOutcome{
		Status:  "pending",
		Message: "Payment is still being processed",
		Record:  record,
	}
}
