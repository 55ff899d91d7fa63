package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/highcrestlabs/academy-payments/internal/domain/errors"
	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/repository"
	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

// AdminHandler exposes the back-office payment endpoints. All routes sit
// behind the admin JWT middleware.
type AdminHandler struct {
	payments     repository.PaymentRepository
	verification *usecase.VerificationService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(
	payments repository.PaymentRepository,
	verification *usecase.VerificationService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		payments:     payments,
		verification: verification,
		logger:       logger,
	}
}

// ListPayments handles GET /api/v1/admin/payments
func (h *AdminHandler) ListPayments(c echo.Context) error {
	filters := repository.ListFilters{
		Status:    model.PaymentStatus(c.QueryParam("status")),
		Email:     c.QueryParam("email"),
		ProgramID: c.QueryParam("programId"),
	}

	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": "Invalid limit parameter",
			})
		}
		filters.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": "Invalid offset parameter",
			})
		}
		filters.Offset = offset
	}

	if filters.Status != "" && !filters.Status.IsKnown() {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "Invalid status filter",
		})
	}

	records, total, err := h.payments.List(c.Request().Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list payments",
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Failed to list payments",
		})
	}

	items := make([]echo.Map, 0, len(records))
	for _, record := range records {
		items = append(items, adminRecordPayload(record))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data": echo.Map{
			"payments": items,
			"total":    total,
			"limit":    filters.Limit,
			"offset":   filters.Offset,
		},
	})
}

// Stats handles GET /api/v1/admin/payments/stats
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.payments.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to compute payment stats",
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Failed to compute stats",
		})
	}

	byStatus := make(map[string]echo.Map, len(stats))
	totalCount := int64(0)
	revenue := decimal.Zero
	for _, stat := range stats {
		byStatus[string(stat.Status)] = echo.Map{
			"count":  stat.Count,
			"amount": model.KoboToMajor(stat.Amount),
		}
		totalCount += stat.Count
		if stat.Status == model.PaymentStatusCompleted {
			revenue = revenue.Add(model.KoboToMajor(stat.Amount))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data": echo.Map{
			"byStatus":   byStatus,
			"totalCount": totalCount,
			"revenue":    revenue,
			"currency":   "NGN",
		},
	})
}

// ReverifyPayment handles POST /api/v1/admin/payments/:reference/verify. It
// runs the same orchestration as the public verify endpoint, so a stuck
// pending record gets settled identically no matter who asks.
func (h *AdminHandler) ReverifyPayment(c echo.Context) error {
	ref := c.Param("reference")

	outcome, err := h.verification.Verify(c.Request().Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidReference):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": "Invalid payment reference",
			})
		case errors.Is(err, domainErrors.ErrPaymentNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{
				"status":  false,
				"message": "Payment not found",
			})
		default:
			h.logger.Error("Admin re-verify failed",
				zap.String("reference", ref),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"status":  false,
				"message": "Unable to verify payment",
			})
		}
	}

	h.logger.Info("Admin re-verified payment",
		zap.String("reference", ref),
		zap.String("outcome", outcome.Status))

	return c.JSON(http.StatusOK, echo.Map{
		"status":  true,
		"message": "Verification complete",
		"data":    verificationPayload(outcome),
	})
}

func adminRecordPayload(record *model.PaymentRecord) echo.Map {
	data := echo.Map{
		"reference":       record.Reference,
		"email":           record.Email,
		"name":            record.FullName(),
		"phone":           record.Phone,
		"programId":       record.ProgramID,
		"programName":     record.ProgramName,
		"amount":          record.AmountMajor(),
		"currency":        record.Currency,
		"paymentStatus":   string(record.Status),
		"webhookAttempts": record.WebhookAttempts,
		"createdAt":       record.CreatedAt.Format(time.RFC3339),
	}

	if record.Channel != nil {
		data["channel"] = *record.Channel
	}
	if record.PaidAt != nil {
		data["paidAt"] = record.PaidAt.Format(time.RFC3339)
	}
	if record.GatewayResponse != nil {
		data["gatewayResponse"] = *record.GatewayResponse
	}
	if record.AdminNotes != nil {
		data["adminNotes"] = *record.AdminNotes
	}

	return data
}
