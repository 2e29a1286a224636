// Package flomo provides a client for the flomo incoming webhook API. A
// client owns a single webhook URL and submits notes to it as JSON.
package flomo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// maxBodySize is the maximum response body size (1MB).
const maxBodySize = 1 << 20

var (
	// ErrInvalidInput is returned when a note has no content.
	ErrInvalidInput = errors.New("invalid content")
	// ErrRequestFailed is returned when the webhook does not answer with a
	// successful JSON response.
	ErrRequestFailed = errors.New("request failed")
)

// RequestError reports a non-2xx response from the webhook.
type RequestError struct {
	StatusCode int
	Status     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("flomo: request failed with status %s", e.Status)
}

// Unwrap lets errors.Is match ErrRequestFailed.
func (e *RequestError) Unwrap() error { return ErrRequestFailed }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Client writes notes to a flomo webhook.
type Client struct {
	apiURL string
	http   *http.Client
	log    *slog.Logger
}

// New creates a Client for the given webhook URL. The URL must be an
// absolute http or https URL.
func New(apiURL string, opts ...Option) (*Client, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("flomo: api url is required")
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("flomo: invalid api url: %w", err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("flomo: invalid api url %q: want an absolute http(s) url", apiURL)
	}

	c := &Client{
		apiURL: apiURL,
		http:   http.DefaultClient,
		log:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type writeRequest struct {
	Content string `json:"content"`
}

// WriteNote posts content to the webhook and returns the decoded response.
func (c *Client) WriteNote(ctx context.Context, content string) (Result, error) {
	if content == "" {
		return Result{}, fmt.Errorf("flomo: %w", ErrInvalidInput)
	}

	payload, err := json.Marshal(writeRequest{Content: content})
	if err != nil {
		return Result{}, fmt.Errorf("flomo: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("flomo: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	c.log.DebugContext(ctx, "flomo request", "bytes", len(payload))

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("flomo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		return Result{}, &RequestError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Result{}, fmt.Errorf("flomo: read body: %w", err)
	}

	res, err := ParseResult(body)
	if err != nil {
		return Result{}, err
	}

	c.log.DebugContext(ctx, "flomo response", "status", resp.StatusCode, "bytes", len(body))

	return res, nil
}
