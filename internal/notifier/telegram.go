// Package notifier delivers chat-bot notifications to the hosted Telegram relay
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/drivingschool/backend/internal/models"
)

// ErrNotConfigured is returned when no relay URL is set
var ErrNotConfigured = errors.New("telegram notify url is not configured")

// StatusError reports a non-2xx response from the relay
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notify endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// TelegramClient posts notifications as JSON to the relay endpoint
type TelegramClient struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewTelegramClient creates a relay client with a 10 second timeout
func NewTelegramClient(url, token string) *TelegramClient {
	return &TelegramClient{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether a relay URL is set
func (c *TelegramClient) Configured() bool {
	return c.url != ""
}

// Send posts {type, chatId, data} to the relay
func (c *TelegramClient) Send(ctx context.Context, n models.Notification) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call notify endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}

	return nil
}
