package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
)

const (
	productionBaseURL = "https://api.lipana.online/v1"
	sandboxBaseURL    = "https://sandbox.lipana.online/v1"
)

// ErrUnavailable means the gateway could not be reached at all.
var ErrUnavailable = errors.New("payment gateway unavailable")

// RejectedError means the gateway answered but did not issue a transaction id.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "payment gateway rejected the request"
	}
	return "payment gateway rejected the request: " + e.Message
}

// PushResult is the gateway's answer to an accepted STK push.
type PushResult struct {
	TransactionID string
}

// Client initiates STK-push prompts against the Lipana gateway.
//
//go:generate mockgen -destination=mocks/mock_gateway.go -package=mock_gateway -source=lipana.go Client
type Client interface {
	InitiateSTKPush(ctx context.Context, phone string, amount float64) (*PushResult, error)
}

type lipanaClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	log        logger.Logger
}

// NewClient builds a Lipana client. Environment is "production" or "sandbox";
// anything else falls back to production.
func NewClient(secretKey, environment string, log logger.Logger) Client {
	baseURL := productionBaseURL
	if environment == "sandbox" {
		baseURL = sandboxBaseURL
	}
	return &lipanaClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		secretKey:  secretKey,
		log:        log,
	}
}

type stkPushRequest struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

type stkPushResponse struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// InitiateSTKPush sends the push request and waits for the gateway's answer.
// A reachable gateway that returns no transaction id is a rejection, never a
// created transaction.
func (c *lipanaClient) InitiateSTKPush(ctx context.Context, phone string, amount float64) (*PushResult, error) {
	bodyBytes, err := json.Marshal(stkPushRequest{Phone: phone, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions/stk-push", bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("gateway request failed", logger.ErrorField("error", err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var result stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Error("gateway response decode failed",
			logger.IntField("status_code", resp.StatusCode),
			logger.ErrorField("error", err))
		return nil, &RejectedError{}
	}

	if result.TransactionID == "" {
		c.log.Warn("gateway returned no transaction id",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("message", result.Message))
		return nil, &RejectedError{Message: result.Message}
	}

	return &PushResult{TransactionID: result.TransactionID}, nil
}
