package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clynova/cantabria-cart/internal/domain/shared"
)

// maxResponseSize limits response body size to prevent memory exhaustion
const maxResponseSize = 2 * 1024 * 1024 // 2MB

// ErrInvalidBaseURL is returned when a client is constructed without a base URL
var ErrInvalidBaseURL = errors.New("gateway: base URL is required")

// client is the shared HTTP plumbing of the backend collaborators.
// Every concrete gateway embeds one.
type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string, timeout time.Duration) (*client, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// doJSON performs an HTTP request with an optional JSON body and decodes a
// JSON response into out (when out is non-nil). Transport failures map to
// shared.ErrRemoteUnavailable, 404 to shared.ErrNotFound.
func (c *client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("gateway: failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("gateway: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: HTTP %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("gateway: HTTP %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway: failed to decode response: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
