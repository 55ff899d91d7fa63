package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/highcrestlabs/academy-payments/internal/domain/errors"
	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/ratelimit"
	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

// PaymentHandler exposes the public checkout endpoints
type PaymentHandler struct {
	initiation   *usecase.InitiationService
	verification *usecase.VerificationService
	limiter      ratelimit.Limiter
	initLimit    int
	verifyLimit  int
	logger       *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler instance
func NewPaymentHandler(
	initiation *usecase.InitiationService,
	verification *usecase.VerificationService,
	limiter ratelimit.Limiter,
	initLimit, verifyLimit int,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		initiation:   initiation,
		verification: verification,
		limiter:      limiter,
		initLimit:    initLimit,
		verifyLimit:  verifyLimit,
		logger:       logger,
	}
}

type initializeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	ProgramID string `json:"programId"`
}

// Initialize handles POST /api/v1/payments/initialize
func (h *PaymentHandler) Initialize(c echo.Context) error {
	if denied := h.enforceLimit(c, "init", h.initLimit); denied != nil {
		return denied
	}

	var req initializeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "Invalid request body",
		})
	}

	result, err := h.initiation.Initiate(c.Request().Context(), usecase.InitiationInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		ProgramID: req.ProgramID,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		var verr *usecase.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": verr.Message,
				"errors":  echo.Map{verr.Field: verr.Message},
			})
		}

		var gerr *provider.GatewayError
		if errors.As(err, &gerr) {
			return c.JSON(http.StatusBadGateway, echo.Map{
				"status":  false,
				"message": "Unable to initialize payment, please try again",
			})
		}

		h.logger.Error("Payment initialization failed",
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Unable to initialize payment",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  true,
		"message": "Payment initialized",
		"data": echo.Map{
			"authorizationUrl": result.AuthorizationURL,
			"accessCode":       result.AccessCode,
			"reference":        result.Reference,
		},
	})
}

// Verify handles GET /api/v1/payments/verify?reference=
func (h *PaymentHandler) Verify(c echo.Context) error {
	if denied := h.enforceLimit(c, "verify", h.verifyLimit); denied != nil {
		return denied
	}

	ref := c.QueryParam("reference")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "reference is required",
		})
	}

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
			h.logger.Error("Payment verification failed",
				zap.String("reference", ref),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"status":  false,
				"message": "Unable to verify payment",
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  true,
		"message": "Verification complete",
		"data":    verificationPayload(outcome),
	})
}

// Programs handles GET /api/v1/programs
func (h *PaymentHandler) Programs(c echo.Context) error {
	programs := model.Programs()

	payload := make([]echo.Map, 0, len(programs))
	for _, p := range programs {
		payload = append(payload, echo.Map{
			"id":          p.ID,
			"name":        p.Name,
			"amount":      p.Amount,
			"amountMajor": model.KoboToMajor(p.Amount),
			"currency":    "NGN",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": true,
		"data":   payload,
	})
}

// enforceLimit applies the per-IP fixed window. A nil return means proceed.
func (h *PaymentHandler) enforceLimit(c echo.Context, scope string, limit int) error {
	result := h.limiter.Check(c.Request().Context(), scope+":"+c.RealIP(), limit, time.Minute)
	if result.Allowed {
		return nil
	}

	retryAfter := int(time.Until(result.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Response().Header().Set("X-RateLimit-Remaining", "0")
	c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	h.logger.Warn("Rate limit exceeded",
		zap.String("scope", scope),
		zap.String("ip", c.RealIP()))

	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"status":  false,
		"message": "Too many requests, please try again shortly",
	})
}

func verificationPayload(outcome *usecase.VerificationOutcome) echo.Map {
	record := outcome.Record

	data := echo.Map{
		"status":    outcome.Status,
		"message":   outcome.Message,
		"reference": record.Reference,
		"amount":    model.KoboToMajor(record.Amount),
		"currency":  record.Currency,
		"customer": echo.Map{
			"email": record.Email,
			"name":  record.FullName(),
		},
		"program": echo.Map{
			"id":   record.ProgramID,
			"name": record.ProgramName,
		},
	}

	if record.PaidAt != nil {
		data["paidAt"] = record.PaidAt.Format(time.RFC3339)
	}
	if record.Channel != nil {
		data["channel"] = *record.Channel
	}

	return data
}
