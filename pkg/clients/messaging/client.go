package messaging

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/dairyfeed/internal/config"
)

// Client exposes the delivery operations used for one-time passwords.
type Client interface {
	SendOTP(ctx context.Context, req SendOTPRequest) (*SendOTPResponse, error)
}

// APIClient is a resty-backed implementation of Client against the SMS
// gateway's HTTP API.
type APIClient struct {
	httpClient *resty.Client
	senderID   string
}

// NewClient builds a gateway client using the provided configuration values.
func NewClient(cfg config.GatewayConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		senderID:   cfg.SenderID,
	}
}

// SendOTPRequest represents one code delivery.
type SendOTPRequest struct {
	Phone string
	Code  string
}

// SendOTPResponse mirrors the successful response from the gateway.
type SendOTPResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// apiError represents a gateway error payload.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *APIClient) SendOTP(ctx context.Context, req SendOTPRequest) (*SendOTPResponse, error) {
	payload := map[string]any{
		"sender": c.senderID,
		"to":     req.Phone,
		"body":   fmt.Sprintf("Your verification code is %s", req.Code),
	}

	result := new(SendOTPResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("send otp: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Error.Message
			if apiErr.Error.Code != 0 {
				code = apiErr.Error.Code
			}
		}
		return nil, fmt.Errorf("gateway error: code=%d, message=%s", code, message)
	}

	return result, nil
}
