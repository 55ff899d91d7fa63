package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domainErrors "github.com/highcrestlabs/academy-payments/internal/domain/errors"
	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	domainRepo "github.com/highcrestlabs/academy-payments/internal/domain/repository"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment record repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, record *model.PaymentRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Should be unreachable given the reference generator's entropy.
			// Loud on purpose: a duplicate here means the generator is broken.
			r.logger.Error("Duplicate payment reference on create",
				zap.String("reference", record.Reference))
			return domainErrors.ErrDuplicateReference
		}
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, ref string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord

	err := r.db.WithContext(ctx).
		Where("reference = ?", ref).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment record: %w", err)
	}

	return &record, nil
}

// MarkCompleted settles the record from the gateway's verify/webhook payload.
// The write is conditional on status=pending: of two concurrent settlement
// attempts exactly one affects a row, the other falls through to the
// attempts-only bump and reports the already-settled record.
func (r *paymentRepository) MarkCompleted(ctx context.Context, ref string, res *provider.VerifyResponse) (*model.PaymentRecord, error) {
	now := time.Now()

	updates := map[string]interface{}{
		"status":               model.PaymentStatusCompleted,
		"channel":              res.Channel,
		"gateway_response":     res.GatewayResponse,
		"gateway_payload":      model.JSONB(res.RawPayload),
		"paid_at":              res.PaidAt,
		"webhook_processed_at": &now,
		"webhook_attempts":     gorm.Expr("webhook_attempts + 1"),
		"updated_at":           now,
	}
	if res.TransactionID != 0 {
		updates["gateway_transaction_id"] = res.TransactionID
	}

	return r.settle(ctx, ref, model.PaymentStatusPending, updates)
}

func (r *paymentRepository) MarkFailed(ctx context.Context, ref string, reason string) (*model.PaymentRecord, error) {
	now := time.Now()

	return r.settle(ctx, ref, model.PaymentStatusPending, map[string]interface{}{
		"status":               model.PaymentStatusFailed,
		"gateway_response":     reason,
		"webhook_processed_at": &now,
		"webhook_attempts":     gorm.Expr("webhook_attempts + 1"),
		"updated_at":           now,
	})
}

func (r *paymentRepository) MarkAbandoned(ctx context.Context, ref string) (*model.PaymentRecord, error) {
	now := time.Now()

	return r.settle(ctx, ref, model.PaymentStatusPending, map[string]interface{}{
		"status":               model.PaymentStatusAbandoned,
		"webhook_processed_at": &now,
		"webhook_attempts":     gorm.Expr("webhook_attempts + 1"),
		"updated_at":           now,
	})
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, ref string, note string) (*model.PaymentRecord, error) {
	now := time.Now()

	return r.settle(ctx, ref, model.PaymentStatusCompleted, map[string]interface{}{
		"status":           model.PaymentStatusRefunded,
		"admin_notes":      note,
		"webhook_attempts": gorm.Expr("webhook_attempts + 1"),
		"updated_at":       now,
	})
}

// settle applies a conditional terminal-state write guarded on the current
// status. When zero rows match, the record is either absent or already
// settled; the attempts counter is still bumped so duplicate deliveries stay
// measurable, and the current record is returned without error.
func (r *paymentRepository) settle(ctx context.Context, ref string, guard model.PaymentStatus, updates map[string]interface{}) (*model.PaymentRecord, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentRecord{}).
		Where("reference = ? AND status = ?", ref, guard).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment record: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		bump := r.db.WithContext(ctx).
			Model(&model.PaymentRecord{}).
			Where("reference = ?", ref).
			UpdateColumn("webhook_attempts", gorm.Expr("webhook_attempts + 1"))
		if bump.Error != nil {
			return nil, fmt.Errorf("failed to record settlement attempt: %w", bump.Error)
		}
		if bump.RowsAffected == 0 {
			return nil, domainErrors.ErrPaymentNotFound
		}

		record, err := r.FindByReference(ctx, ref)
		if err != nil {
			return nil, err
		}
		r.logger.Info("Settlement write was a no-op",
			zap.String("reference", ref),
			zap.String("current_status", string(record.Status)),
			zap.Int("webhook_attempts", record.WebhookAttempts))
		return record, nil
	}

	return r.FindByReference(ctx, ref)
}

func (r *paymentRepository) List(ctx context.Context, filters domainRepo.ListFilters) ([]*model.PaymentRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.PaymentRecord{})

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Email != "" {
		query = query.Where("email = ?", filters.Email)
	}
	if filters.ProgramID != "" {
		query = query.Where("program_id = ?", filters.ProgramID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment records: %w", err)
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	var records []*model.PaymentRecord
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment records: %w", err)
	}

	return records, total, nil
}

func (r *paymentRepository) Stats(ctx context.Context) ([]domainRepo.StatusStat, error) {
	var stats []domainRepo.StatusStat

	err := r.db.WithContext(ctx).
		Model(&model.PaymentRecord{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment stats: %w", err)
	}

	return stats, nil
}

func (r *paymentRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*model.PaymentRecord, error) {
	var records []*model.PaymentRecord

	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find stale pending records: %w", err)
	}

	return records, nil
}
