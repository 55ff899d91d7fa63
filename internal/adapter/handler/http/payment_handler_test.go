package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/domain/model"
	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
	"github.com/highcrestlabs/academy-payments/internal/ratelimit"
	"github.com/highcrestlabs/academy-payments/internal/usecase"
)

func newTestPaymentHandler(repo *mockPaymentRepository, gateway *mockGateway) *PaymentHandler {
	logger := zap.NewNop()
	initiation := usecase.NewInitiationService(repo, gateway, "https://academy.example.com/payment/callback", logger)
	verification := usecase.NewVerificationService(repo, gateway, logger)
	return NewPaymentHandler(initiation, verification, ratelimit.NewMemoryLimiter(), 5, 10, logger)
}

func postInitialize(handler *PaymentHandler, body string, ip string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initialize", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = handler.Initialize(c)
	return rec
}

const validInitializeBody = `{
	"email": "ada@example.com",
	"firstName": "Ada",
	"lastName": "Obi",
	"phone": "+2348012345678",
	"programId": "intro-to-web-development"
}`

func TestPaymentHandler_Initialize(t *testing.T) {
	t.Run("valid submission returns checkout handle", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		gateway.On("Initialize", mock.Anything, mock.Anything).
			Return(&provider.InitializeResponse{
				AuthorizationURL: "https://checkout.paystack.com/abc123",
				AccessCode:       "abc123",
			}, nil)

		rec := postInitialize(handler, validInitializeBody, "203.0.113.5")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["status"])
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "https://checkout.paystack.com/abc123", data["authorizationUrl"])
		assert.NotEmpty(t, data["reference"])
	})

	t.Run("validation failure returns 400 with field error", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		body := strings.Replace(validInitializeBody, "+2348012345678", "+15551234567", 1)
		rec := postInitialize(handler, body, "203.0.113.5")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "Create")

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["status"])
		assert.Contains(t, resp["errors"].(map[string]interface{}), "Phone")
	})

	t.Run("gateway rejection returns 502", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything).
			Return(&model.PaymentRecord{Status: model.PaymentStatusFailed}, nil)
		gateway.On("Initialize", mock.Anything, mock.Anything).
			Return(nil, &provider.GatewayError{Code: "REJECTED", Message: "Invalid key"})

		rec := postInitialize(handler, validInitializeBody, "203.0.113.5")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("sixth request inside the window is limited with headers", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		gateway.On("Initialize", mock.Anything, mock.Anything).
			Return(&provider.InitializeResponse{AuthorizationURL: "https://checkout.paystack.com/x"}, nil)

		for i := 0; i < 5; i++ {
			rec := postInitialize(handler, validInitializeBody, "203.0.113.9")
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := postInitialize(handler, validInitializeBody, "203.0.113.9")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("limit is per client address", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		gateway.On("Initialize", mock.Anything, mock.Anything).
			Return(&provider.InitializeResponse{AuthorizationURL: "https://checkout.paystack.com/x"}, nil)

		for i := 0; i < 5; i++ {
			postInitialize(handler, validInitializeBody, "198.51.100.1")
		}

		rec := postInitialize(handler, validInitializeBody, "198.51.100.2")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPaymentHandler_Verify(t *testing.T) {
	getVerify := func(handler *PaymentHandler, ref string) *httptest.ResponseRecorder {
		e := echo.New()
		target := "/api/v1/payments/verify"
		if ref != "" {
			target += "?reference=" + ref
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		_ = handler.Verify(c)
		return rec
	}

	t.Run("completed payment reports success with settlement details", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		gateway := new(mockGateway)
		handler := newTestPaymentHandler(repo, gateway)

		channel := "card"
		record := &model.PaymentRecord{
			Reference:   webhookTestRef,
			Email:       "ada@example.com",
			FirstName:   "Ada",
			LastName:    "Obi",
			ProgramID:   "intro-to-web-development",
			ProgramName: "Intro to Web Development",
			Amount:      5000000,
			Currency:    "NGN",
			Status:      model.PaymentStatusCompleted,
			Channel:     &channel,
		}

		repo.On("FindByReference", mock.Anything, webhookTestRef).Return(record, nil)

		rec := getVerify(handler, webhookTestRef)

		assert.Equal(t, http.StatusOK, rec.Code)
		gateway.AssertNotCalled(t, "Verify")

		var resp map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, "success", data["status"])
		assert.Equal(t, "50000", data["amount"])
		assert.Equal(t, "card", data["channel"])
	})

	t.Run("missing reference returns 400", func(t *testing.T) {
		handler := newTestPaymentHandler(new(mockPaymentRepository), new(mockGateway))
		rec := getVerify(handler, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed reference returns 400", func(t *testing.T) {
		repo := new(mockPaymentRepository)
		handler := newTestPaymentHandler(repo, new(mockGateway))

		rec := getVerify(handler, "not-a-reference")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "FindByReference")
	})
}

func TestPaymentHandler_Programs(t *testing.T) {
	handler := newTestPaymentHandler(new(mockPaymentRepository), new(mockGateway))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, handler.Programs(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	programs := resp["data"].([]interface{})
	assert.Len(t, programs, 3)
}
