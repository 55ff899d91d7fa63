package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

// WebhookHandler receives gateway callbacks
type WebhookHandler struct {
	webhooks *usecase.WebhookService
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(webhooks *usecase.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhooks: webhooks,
		logger:   logger,
	}
}

// Handle processes POST /api/v1/payments/webhook. The signature is checked
// over the raw body before any parsing; after authentication the provider is
// always acked with 200 so it does not retry events we have already recorded.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body",
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "Failed to read request body",
		})
	}

	signature := c.Request().Header.Get("x-paystack-signature")
	if !h.webhooks.VerifySignature(body, signature) {
		h.logger.Warn("Webhook signature verification failed",
			zap.String("ip", c.RealIP()),
			zap.Int("body_bytes", len(body)))
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"status":  false,
			"message": "Invalid signature",
		})
	}

	if err := h.webhooks.Process(c.Request().Context(), body); err != nil {
		// Still ack: the event is audited and a retry would not change the
		// outcome of a malformed or failing payload.
		h.logger.Error("Webhook processing failed",
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{"status": true})
}
