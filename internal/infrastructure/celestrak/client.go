// Package celestrak reads the active-object CSV and the recently decayed
// listing published by CelesTrak.
package celestrak

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const userAgent = "StarlinkWatch/1.0"

// Client fetches both CelesTrak sources.
type Client struct {
	client     *http.Client
	activeURL  string
	decayedURL string
	logger     *slog.Logger
}

// NewClient wires an HTTP client; a nil client gets a 60s timeout.
func NewClient(client *http.Client, activeURL, decayedURL string, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		client:     client,
		activeURL:  activeURL,
		decayedURL: decayedURL,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()
		return nil, fmt.Errorf("celestrak returned %s", resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
