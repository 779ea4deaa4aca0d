// Package paymentclient is a thin HTTP client the booking node's
// coordinator uses to reach the external payment service.
package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 3 * time.Second}}
}

type processPaymentRequest struct {
	UserID      string `json:"user_id"`
	AmountCents uint32 `json:"amount_cents"`
	Currency    string `json:"currency"`
	Card        string `json:"card"`
}

type processPaymentResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// ProcessPayment satisfies coordinator.PaymentClient.
func (c *Client) ProcessPayment(ctx context.Context, userID string, amountCents uint32, currency, card string) (string, string, error) {
	body, _ := json.Marshal(processPaymentRequest{UserID: userID, AmountCents: amountCents, Currency: currency, Card: card})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/process-payment", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("paymentclient: unexpected status %d", resp.StatusCode)
	}
	var out processPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.TransactionID, out.Status, nil
}
