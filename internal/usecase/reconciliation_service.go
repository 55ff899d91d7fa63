package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
)

// ReconciliationSummary reports one sweep over stale pending records
type ReconciliationSummary struct {
	Examined  int
	Completed int
	Failed    int
	Abandoned int
	Pending   int
	Errors    int
}

// ReconciliationService re-verifies pending records old enough that both the
// customer redirect and the provider webhook have plausibly been lost, e.g.
// after a crash between gateway initialization and local persistence of the
// result. It reuses the verification orchestrator, so a sweep can never
// regress a settled record or fail a record the provider still reports
// pending.
type ReconciliationService struct {
	payments     repository.PaymentRepository
	verification *VerificationService
	logger       *zap.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	payments repository.PaymentRepository,
	verification *VerificationService,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		payments:     payments,
		verification: verification,
		logger:       logger,
	}
}

// Sweep re-verifies pending records created before now-olderThan, at most
// batchSize of them, oldest first.
func (s *ReconciliationService) Sweep(ctx context.Context, olderThan time.Duration, batchSize int) (*ReconciliationSummary, error) {
	cutoff := time.Now().Add(-olderThan)

	records, err := s.payments.FindStalePending(ctx, cutoff, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &ReconciliationSummary{}
	for _, record := range records {
		summary.Examined++

		outcome, err := s.verification.Verify(ctx, record.Reference)
		if err != nil {
			summary.Errors++
			s.logger.Error("Reconciliation verify failed",
				zap.String("reference", record.Reference),
				zap.Error(err))
			continue
		}

		switch outcome.Status {
		case "success":
			summary.Completed++
		case "failed":
			summary.Failed++
		case "abandoned":
			summary.Abandoned++
		default:
			summary.Pending++
		}
	}

	s.logger.Info("Reconciliation sweep finished",
		zap.Int("examined", summary.Examined),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("abandoned", summary.Abandoned),
		zap.Int("still_pending", summary.Pending),
		zap.Int("errors", summary.Errors))

	return summary, nil
}
