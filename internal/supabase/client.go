// Package supabase pushes climate readings to a Supabase table over its
// REST endpoint.
package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sleepywoodpecker/rp-goes-audio/internal/sensor"
)

const requestTimeout = 10 * time.Second

// Client posts readings as form-encoded bodies. The key rides in both the
// apikey and Authorization headers, which is what the Supabase REST endpoint
// expects from device clients.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, key string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		key:     key,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// PushReading posts one complete reading. Incomplete readings are rejected
// rather than written as partial rows.
func (c *Client) PushReading(ctx context.Context, r sensor.Reading) error {
	if r.Temperature == nil || r.Humidity == nil {
		return fmt.Errorf("incomplete reading, need both temperature and humidity")
	}

	body := fmt.Sprintf("humidity=%v&temperature=%v", *r.Humidity, *r.Temperature)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending reading: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	c.logger.Info(
		"[supabase] response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("supabase returned status %d", resp.StatusCode)
	}
	return nil
}
