package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client talks to the Razorpay Orders API. Creating an order is the only
// network call the booking flow makes; the charge itself happens on the
// customer's side and comes back as a signed confirmation.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Razorpay client. baseURL is normally
// https://api.razorpay.com; tests point it at a local server.
func NewClient(keyID, keySecret, baseURL string, timeout time.Duration) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// transientStatus reports whether a gateway response may be retried. A 4xx is
// a definitive rejection and must never be retried.
func transientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return code >= 500
	}
}

// CreateOrder creates a remote payment order and returns its gateway ID.
// amountMinor is in the smallest currency unit (paise for INR). The receipt
// doubles as an idempotency key, so connection errors and transient gateway
// failures are retried a bounded number of times.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(orderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode order request: %w", err)
	}

	const maxAttempts = 3
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		orderID, retryable, err := c.postOrder(ctx, payload)
		if err == nil {
			return orderID, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		log.Printf("Razorpay order attempt %d/%d failed: %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
	}

	return "", lastErr
}

func (c *Client) postOrder(ctx context.Context, payload []byte) (orderID string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection-level failure, safe to retry with the same receipt.
		return "", true, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Description != "" {
			err = fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, apiErr.Error.Description)
		} else {
			err = fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
		}
		return "", transientStatus(resp.StatusCode), err
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", false, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if order.ID == "" {
		return "", false, fmt.Errorf("payment gateway returned an empty order id")
	}

	return order.ID, false, nil
}
