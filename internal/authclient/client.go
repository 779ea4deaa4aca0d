// Package authclient is a thin HTTP client the booking node's coordinator
// uses to reach the external auth service.
package authclient

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

type validateSessionResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
}

// ValidateSession satisfies coordinator.AuthClient.
func (c *Client) ValidateSession(ctx context.Context, token string) (string, bool, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/validate-session", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("authclient: unexpected status %d", resp.StatusCode)
	}
	var out validateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, err
	}
	return out.UserID, out.Valid, nil
}
