package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	adapterRepo "github.com/highcrestlabs/academy-payments/internal/adapter/repository"
	domainErrors "github.com/highcrestlabs/academy-payments/internal/domain/errors"
	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
	"github.com/highcrestlabs/academy-payments/internal/reference"
)

// refundReasonMarker prefixes the original payment reference inside a
// transfer's free-text reason field. Inherited contract: the gateway carries
// no structured link from a refund transfer back to the charge.
const refundReasonMarker = "Refund:"

// webhookEnvelope is the provider's event wrapper
type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// chargeData is the charge event payload subset this service consumes
type chargeData struct {
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Channel         string `json:"channel"`
	GatewayResponse string `json:"gateway_response"`
	ID              int64  `json:"id"`
	PaidAt          string `json:"paid_at"`
	Customer        struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// transferData is the transfer event payload subset this service consumes
type transferData struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// WebhookService applies provider callbacks to payment records. Signature
// verification happens over the raw body bytes before any parsing; verified
// events are audited and then dispatched idempotently.
type WebhookService struct {
	payments repository.PaymentRepository
	events   adapterRepo.WebhookRepository
	secret   string
	logger   *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	payments repository.PaymentRepository,
	events adapterRepo.WebhookRepository,
	secret string,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		payments: payments,
		events:   events,
		secret:   secret,
		logger:   logger,
	}
}

// VerifySignature checks the provider's HMAC-SHA512 signature over the raw
// body. Constant-time comparison; a missing header never verifies.
func (s *WebhookService) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Process parses a verified body and applies the event. Callers ack with 200
// regardless of the returned error; the error exists for logging only.
func (s *WebhookService) Process(ctx context.Context, body []byte) error {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	eventID := s.auditEvent(ctx, &env)

	var outcome string
	var err error
	switch env.Event {
	case "charge.success":
		outcome, err = s.handleChargeSuccess(ctx, env.Data)
	case "charge.failed":
		outcome, err = s.handleChargeFailed(ctx, env.Data)
	case "transfer.success":
		outcome, err = s.handleTransferSuccess(ctx, env.Data)
	case "transfer.failed":
		var data transferData
		_ = json.Unmarshal(env.Data, &data)
		s.logger.Info("Transfer failed event received",
			zap.String("transfer_reference", data.Reference))
		outcome = model.WebhookOutcomeIgnored
	default:
		s.logger.Info("Unhandled webhook event type",
			zap.String("event", env.Event))
		outcome = model.WebhookOutcomeIgnored
	}

	if err != nil {
		outcome = model.WebhookOutcomeError
	}
	s.recordOutcome(ctx, eventID, outcome)

	return err
}

func (s *WebhookService) handleChargeSuccess(ctx context.Context, raw json.RawMessage) (string, error) {
	var data chargeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse charge data: %w", err)
	}

	// Reference shape is checked before it reaches a storage query
	if !reference.IsValid(data.Reference) {
		s.logger.Warn("Webhook carried a foreign or malformed reference",
			zap.String("reference", data.Reference))
		return model.WebhookOutcomeUnmatched, nil
	}

	record, err := s.payments.FindByReference(ctx, data.Reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			// Test traffic or another system on the same gateway account;
			// acknowledged, not an application error.
			s.logger.Warn("No payment record for charge.success",
				zap.String("reference", data.Reference))
			return model.WebhookOutcomeUnmatched, nil
		}
		return "", err
	}

	_, canApply := model.Transition(record.Status, model.EventGatewaySuccess)

	updated, err := s.payments.MarkCompleted(ctx, data.Reference, chargeToVerifyResponse(&data))
	if err != nil {
		return "", err
	}

	if !canApply {
		s.logger.Info("Duplicate charge.success delivery",
			zap.String("reference", data.Reference),
			zap.String("status", string(updated.Status)),
			zap.Int("webhook_attempts", updated.WebhookAttempts))
		return model.WebhookOutcomeDuplicate, nil
	}

	s.logger.Info("Payment completed via webhook",
		zap.String("reference", data.Reference),
		zap.Int64("amount", data.Amount),
		zap.String("email", data.Customer.Email),
		zap.String("program", updated.ProgramName))
	return model.WebhookOutcomeApplied, nil
}

func (s *WebhookService) handleChargeFailed(ctx context.Context, raw json.RawMessage) (string, error) {
	var data chargeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse charge data: %w", err)
	}

	if !reference.IsValid(data.Reference) {
		return model.WebhookOutcomeUnmatched, nil
	}

	record, err := s.payments.FindByReference(ctx, data.Reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			s.logger.Warn("No payment record for charge.failed",
				zap.String("reference", data.Reference))
			return model.WebhookOutcomeUnmatched, nil
		}
		return "", err
	}

	_, canApply := model.Transition(record.Status, model.EventGatewayFailed)

	// The conditional write no-ops on settled records while still bumping
	// the attempts counter.
	if _, err := s.payments.MarkFailed(ctx, data.Reference, failureReason(&data)); err != nil {
		return "", err
	}

	if !canApply {
		return model.WebhookOutcomeDuplicate, nil
	}

	s.logger.Info("Payment failed via webhook",
		zap.String("reference", data.Reference),
		zap.String("reason", data.GatewayResponse))
	return model.WebhookOutcomeApplied, nil
}

func (s *WebhookService) handleTransferSuccess(ctx context.Context, raw json.RawMessage) (string, error) {
	var data transferData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to parse transfer data: %w", err)
	}

	ref := refundReference(data.Reason)
	if ref == "" || !reference.IsValid(ref) {
		s.logger.Info("Transfer success without refund correlation",
			zap.String("transfer_reference", data.Reference),
			zap.String("reason", data.Reason))
		return model.WebhookOutcomeUnmatched, nil
	}

	note := "Refunded via transfer " + data.Reference
	updated, err := s.payments.MarkRefunded(ctx, ref, note)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentNotFound) {
			s.logger.Warn("Refund transfer references unknown payment",
				zap.String("reference", ref))
			return model.WebhookOutcomeUnmatched, nil
		}
		return "", err
	}

	if updated.Status != model.PaymentStatusRefunded {
		// Not completed, so the conditional write no-oped
		s.logger.Warn("Refund transfer for a payment that was never completed",
			zap.String("reference", ref),
			zap.String("status", string(updated.Status)))
		return model.WebhookOutcomeIgnored, nil
	}

	s.logger.Info("Payment refunded via transfer",
		zap.String("reference", ref))
	return model.WebhookOutcomeApplied, nil
}

// auditEvent persists the verified callback before dispatch. Audit failures
// are logged and swallowed: losing an audit row must not block settlement.
func (s *WebhookService) auditEvent(ctx context.Context, env *webhookEnvelope) string {
	var data model.JSONB
	if err := json.Unmarshal(env.Data, &data); err != nil {
		data = model.JSONB{}
	}

	ref := ""
	if v, ok := data["reference"].(string); ok {
		ref = v
	}

	eventID, err := s.events.SaveEvent(ctx, env.Event, ref, data)
	if err != nil {
		s.logger.Error("Failed to audit webhook event",
			zap.String("event", env.Event),
			zap.Error(err))
		return ""
	}
	return eventID
}

func (s *WebhookService) recordOutcome(ctx context.Context, eventID, outcome string) {
	if eventID == "" {
		return
	}
	if err := s.events.MarkOutcome(ctx, eventID, outcome); err != nil {
		s.logger.Error("Failed to record webhook outcome",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

func chargeToVerifyResponse(data *chargeData) *provider.VerifyResponse {
	res := &provider.VerifyResponse{
		Status:          provider.TxStatusSuccess,
		Reference:       data.Reference,
		Amount:          data.Amount,
		Currency:        data.Currency,
		Channel:         data.Channel,
		GatewayResponse: data.GatewayResponse,
		TransactionID:   data.ID,
		CustomerEmail:   data.Customer.Email,
	}

	if data.PaidAt != "" {
		if parsed, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			res.PaidAt = &parsed
		}
	}
	if res.PaidAt == nil {
		now := time.Now()
		res.PaidAt = &now
	}

	return res
}

func failureReason(data *chargeData) string {
	if data.GatewayResponse != "" {
		return data.GatewayResponse
	}
	return "Payment failed"
}

// refundReference extracts the original payment reference from a transfer
// reason like "Refund:HCL_..." or "Course refund Refund: HCL_...".
func refundReference(reason string) string {
	idx := strings.Index(reason, refundReasonMarker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(reason[idx+len(refundReasonMarker):])
	if fields := strings.Fields(rest); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
