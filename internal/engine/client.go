// Package engine talks to the external workflow engine (n8n or
// equivalent) that performs image generation out of process. The engine
// acknowledges a dispatch immediately and reports results back later via
// the job callback endpoint.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackzampolin/fable/internal/imagejob"
)

// ErrNotConfigured is returned when no webhook URL is configured.
// Detected before any network call; never retried.
var ErrNotConfigured = errors.New("image engine webhook URL not configured")

// Client dispatches jobs to the engine webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates an engine client for the given webhook URL.
// The URL may be empty; Dispatch then fails with ErrNotConfigured.
func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			// Bounds the acknowledgement wait only. The generation work
			// itself runs for minutes and is observed via polling.
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a webhook URL is set.
func (c *Client) Configured() bool {
	return c.webhookURL != ""
}

// Dispatch posts the work-item list to the engine and waits for the
// acknowledgement. The response body is ignored beyond error text. A
// non-success acknowledgement or a network failure is returned as an
// error; the caller records it on the job rather than retrying.
func (c *Client) Dispatch(ctx context.Context, req imagejob.DispatchRequest) error {
	if c.webhookURL == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("engine rejected job (status %d): %s", resp.StatusCode, string(detail))
	}

	return nil
}
