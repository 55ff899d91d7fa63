package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/config"
	"github.com/highcrestlabs/academy-payments/internal/infrastructure/database"
	"github.com/highcrestlabs/academy-payments/internal/infrastructure/provider/paystack"
	"github.com/highcrestlabs/academy-payments/internal/logger"
	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

// One-shot reconciliation sweep, intended to run from cron. Re-verifies
// pending payments old enough that both the customer redirect and the
// provider webhook have plausibly been lost.
func main() {
	olderThan := flag.Duration("older-than", 0, "override minimum pending age")
	batchSize := flag.Int("batch-size", 0, "override maximum records per sweep")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	repos := database.NewRepositories(db, zapLogger)

	gateway := paystack.NewClient(
		cfg.Service.Paystack.SecretKey,
		cfg.Service.Paystack.BaseURL,
		cfg.Service.Paystack.Timeout,
		zapLogger,
	)

	verification := usecase.NewVerificationService(repos.Payment, gateway, zapLogger)
	reconciliation := usecase.NewReconciliationService(repos.Payment, verification, zapLogger)

	age := cfg.Service.Reconcile.PendingOlderThan
	if *olderThan > 0 {
		age = *olderThan
	}
	if age == 0 {
		age = 30 * time.Minute
	}

	batch := cfg.Service.Reconcile.BatchSize
	if *batchSize > 0 {
		batch = *batchSize
	}
	if batch == 0 {
		batch = 100
	}

	summary, err := reconciliation.Sweep(context.Background(), age, batch)
	if err != nil {
		zapLogger.Fatal("Reconciliation sweep failed", zap.Error(err))
	}

	zapLogger.Info("Reconciliation done",
		zap.Int("examined", summary.Examined),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("abandoned", summary.Abandoned),
		zap.Int("still_pending", summary.Pending),
		zap.Int("errors", summary.Errors))
}
