package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
)

// WebhookRepository stores the audit trail of inbound gateway callbacks
type WebhookRepository interface {
	SaveEvent(ctx context.Context, eventType, reference string, data model.JSONB) (string, error)
	MarkOutcome(ctx context.Context, eventID, outcome string) error
}

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a new webhook event repository
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) WebhookRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent records a signature-verified callback before dispatch
func (r *webhookRepository) SaveEvent(ctx context.Context, eventType, reference string, data model.JSONB) (string, error) {
	event := &model.GatewayWebhookEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Reference: reference,
		Data:      data,
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_type", eventType),
			zap.String("reference", reference),
			zap.Error(err))
		return "", fmt.Errorf("failed to save webhook event: %w", err)
	}

	return event.ID, nil
}

// MarkOutcome records how dispatching the event ended
func (r *webhookRepository) MarkOutcome(ctx context.Context, eventID, outcome string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.GatewayWebhookEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"outcome":      outcome,
			"processed_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark webhook outcome: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}
