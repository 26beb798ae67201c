package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/models"
)

// Client talks to the merchant backend's REST API. It implements
// poller.PaymentAPI.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type payRequest struct {
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
}

type payResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Error         string `json:"error"`
}

// Initiate submits {phone, amount} and returns the transaction id to poll on.
func (c *Client) Initiate(ctx context.Context, phone string, amount float64) (string, error) {
	bodyBytes, err := json.Marshal(payRequest{Phone: phone, Amount: amount})
	if err != nil {
		return "", fmt.Errorf("marshal pay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pay", bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build pay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pay request: %w", err)
	}
	defer resp.Body.Close()

	var result payResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode pay response: %w", err)
	}

	if !result.Success || result.TransactionID == "" {
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("payment initiation failed with status %d", resp.StatusCode)
	}

	return result.TransactionID, nil
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Status fetches the current status for a transaction id.
func (c *Client) Status(ctx context.Context, transactionID string) (models.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status/"+transactionID, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	var result statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Message != "" {
			return "", errors.New(result.Message)
		}
		if result.Error != "" {
			return "", errors.New(result.Error)
		}
		return "", fmt.Errorf("status check failed with status %d", resp.StatusCode)
	}

	return models.Status(result.Status), nil
}
