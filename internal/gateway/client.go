package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tixpay/internal/config"
)

const (
	currencyPHP = "PHP"
	countryPH   = "PH"
)

// Client is an HTTP client for the payment gateway API. The API key is held in
// the injected config, never in package state.
type Client struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
}

// NewClient creates a gateway client from config.
func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// apiPaymentMethod mirrors the gateway's payment method resource.
type apiPaymentMethod struct {
	ID          string      `json:"id"`
	CustomerID  string      `json:"customer_id"`
	ReferenceID string      `json:"reference_id"`
	Created     time.Time   `json:"created"`
	Actions     []apiAction `json:"actions"`
}

// apiPaymentRequest mirrors the gateway's payment request resource.
type apiPaymentRequest struct {
	ID          string      `json:"id"`
	ReferenceID string      `json:"reference_id"`
	Status      string      `json:"status"`
	Created     time.Time   `json:"created"`
	Actions     []apiAction `json:"actions"`
}

type apiAction struct {
	URL string `json:"url"`
}

type apiError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// CreatePaymentMethod creates a one-time-use direct debit payment method.
func (c *Client) CreatePaymentMethod(ctx context.Context, params CreatePaymentMethodParams) (*PaymentMethod, error) {
	payload := map[string]any{
		"type": "DIRECT_DEBIT",
		"direct_debit": map[string]any{
			"channel_code": params.ChannelCode,
			"channel_properties": map[string]any{
				"success_return_url": params.SuccessReturnURL,
				"failure_return_url": params.FailureReturnURL,
				"email":              params.Email,
			},
		},
		"customer": map[string]any{
			"reference_id": params.ReferenceID,
			"type":         "INDIVIDUAL",
			"individual_detail": map[string]any{
				"given_names": params.GivenNames,
				"surname":     params.Surname,
			},
		},
		"reusability": "ONE_TIME_USE",
	}

	var out apiPaymentMethod
	if err := c.post(ctx, "/payment_methods", "", payload, &out); err != nil {
		return nil, err
	}

	return &PaymentMethod{
		ID:          out.ID,
		CustomerID:  out.CustomerID,
		ReferenceID: out.ReferenceID,
		ActionURL:   firstActionURL(out.Actions),
		Created:     out.Created,
	}, nil
}

// CreatePaymentRequest creates a payment request. The idempotency key makes
// gateway-side retries of the same request safe.
func (c *Client) CreatePaymentRequest(ctx context.Context, idempotencyKey string, params CreatePaymentRequestParams) (*PaymentRequest, error) {
	payload := map[string]any{
		"reference_id": params.ReferenceID,
		"amount":       params.Amount,
		"currency":     currencyPHP,
	}

	if params.PaymentMethodID != "" {
		payload["payment_method_id"] = params.PaymentMethodID
		payload["callback_url"] = params.CallbackURL
		payload["enable_otp"] = false
	} else {
		payload["country"] = countryPH
		payload["payment_method"] = map[string]any{
			"type": "EWALLET",
			"ewallet": map[string]any{
				"channel_code": params.ChannelCode,
				"channel_properties": map[string]any{
					"success_return_url": params.SuccessReturnURL,
					"failure_return_url": params.FailureReturnURL,
				},
			},
			"reusability": "ONE_TIME_USE",
		}
	}

	var out apiPaymentRequest
	if err := c.post(ctx, "/payment_requests", idempotencyKey, payload, &out); err != nil {
		return nil, err
	}

	return toPaymentRequest(out), nil
}

// GetPaymentRequest fetches a payment request's current state.
func (c *Client) GetPaymentRequest(ctx context.Context, id string) (*PaymentRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/payment_requests/"+id, nil)
	if err != nil {
		return nil, err
	}

	var out apiPaymentRequest
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return toPaymentRequest(out), nil
}

func (c *Client) post(ctx context.Context, path, idempotencyKey string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.SetBasicAuth(c.cfg.APIKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return fmt.Errorf("%w: %s", ErrRejected, apiErr.Message)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func toPaymentRequest(out apiPaymentRequest) *PaymentRequest {
	return &PaymentRequest{
		ID:          out.ID,
		ReferenceID: out.ReferenceID,
		Status:      out.Status,
		ActionURL:   firstActionURL(out.Actions),
		Created:     out.Created,
	}
}

func firstActionURL(actions []apiAction) string {
	if len(actions) == 0 {
		return ""
	}
	return actions[0].URL
}
