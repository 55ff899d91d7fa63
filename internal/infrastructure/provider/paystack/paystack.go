// Package paystack implements the gateway contract against the Paystack REST
// API. Transactions are created with a locally generated reference and the
// customer completes checkout on Paystack's hosted page; Verify re-reads the
// provider-side status for that reference.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/highcrestlabs/academy-payments/internal/domain/provider"
)

const defaultBaseURL = "https://api.paystack.co"

// Client talks to the Paystack transaction API
type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a new Paystack client. baseURL may be empty for the
// production API; tests point it at a local server. A zero timeout defaults
// to 15 seconds so a hung provider can never hang a request indefinitely.
func NewClient(secretKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// envelope is the common Paystack response wrapper
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a transaction and returns the hosted checkout URL.
// POST /transaction/initialize
func (c *Client) Initialize(ctx context.Context, req *provider.InitializeRequest) (*provider.InitializeResponse, error) {
	body := map[string]interface{}{
		"email":        req.Email,
		"amount":       req.Amount,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}
	if len(req.Channels) > 0 {
		body["channels"] = req.Channels
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "MARSHAL_ERROR",
			Message: "failed to prepare request: " + err.Error(),
		}
	}

	env, gerr := c.do(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewBuffer(jsonBody))
	if gerr != nil {
		return nil, gerr
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &provider.GatewayError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse initialize response: " + err.Error(),
		}
	}

	c.logger.Info("Gateway transaction initialized",
		zap.String("reference", data.Reference),
		zap.String("access_code", data.AccessCode))

	return &provider.InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify re-reads the provider-side transaction status.
// GET /transaction/verify/{reference}
func (c *Client) Verify(ctx context.Context, reference string) (*provider.VerifyResponse, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))

	env, gerr := c.do(ctx, http.MethodGet, endpoint, nil)
	if gerr != nil {
		return nil, gerr
	}

	var data struct {
		Status          string `json:"status"`
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
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &provider.GatewayError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse verify response: " + err.Error(),
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		raw = nil
	}

	res := &provider.VerifyResponse{
		Status:          txStatus(data.Status),
		Reference:       data.Reference,
		Amount:          data.Amount,
		Currency:        data.Currency,
		Channel:         data.Channel,
		GatewayResponse: data.GatewayResponse,
		TransactionID:   data.ID,
		CustomerEmail:   data.Customer.Email,
		RawPayload:      raw,
	}

	if data.PaidAt != "" {
		if parsed, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
			res.PaidAt = &parsed
		}
	}

	return res, nil
}

// do executes one API call and maps failures onto the retryable/terminal
// split: transport errors and 5xx are retryable, 4xx and provider-reported
// non-success are terminal for that call.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*envelope, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:    "REQUEST_ERROR",
			Message: "failed to create request: " + err.Error(),
		}
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		code := "NETWORK_ERROR"
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			code = "TIMEOUT"
		} else if errors.Is(err, context.DeadlineExceeded) {
			code = "TIMEOUT"
		}
		c.logger.Warn("Gateway request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, &provider.GatewayError{
			Code:      code,
			Message:   err.Error(),
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.GatewayError{
			Code:      "RESPONSE_ERROR",
			Message:   "failed to read response: " + err.Error(),
			Retryable: true,
		}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil && resp.StatusCode < http.StatusInternalServerError {
		return nil, &provider.GatewayError{
			Code:    "PARSE_ERROR",
			Message: fmt.Sprintf("failed to parse response (status %d)", resp.StatusCode),
		}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("Gateway returned server error",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode))
		return nil, &provider.GatewayError{
			Code:      "SERVER_ERROR",
			Message:   fmt.Sprintf("gateway error: status %d", resp.StatusCode),
			Retryable: true,
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		message := env.Message
		if message == "" {
			message = fmt.Sprintf("gateway rejected request: status %d", resp.StatusCode)
		}
		c.logger.Error("Gateway rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", message))
		return nil, &provider.GatewayError{
			Code:    "REJECTED",
			Message: message,
		}
	}

	return &env, nil
}

func txStatus(s string) provider.TxStatus {
	switch s {
	case "success":
		return provider.TxStatusSuccess
	case "failed":
		return provider.TxStatusFailed
	case "abandoned":
		return provider.TxStatusAbandoned
	default:
		return provider.TxStatusPending
	}
}
