package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(
		&model.PaymentRecord{},
		&model.GatewayWebhookEvent{},
	); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes GORM's struct tags don't express
func createCustomIndexes(db *gorm.DB) error {
	// Reconciliation sweep scans pending records oldest first
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_records_status_created_at ON payment_records (status, created_at)`).Error; err != nil {
		return err
	}

	// Webhook audit queries by reference when investigating a payment
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_gateway_webhook_events_reference ON gateway_webhook_events (reference) WHERE reference <> ''`).Error; err != nil {
		return err
	}

	return nil
}
