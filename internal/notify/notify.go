// Package notify delivers best-effort push notifications via Pushover.
// Delivery is fire-and-forget from the pipeline's perspective: callers at
// the tool boundary log failures and move on.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Pushover API endpoint.
const DefaultBaseURL = "https://api.pushover.net"

// Client sends messages to Pushover. If token or user is empty the client
// is disabled and Send becomes a silent no-op, which keeps local
// development working without credentials.
type Client struct {
	baseURL string
	token   string
	user    string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Pushover client.
func New(token, user string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		user:    user,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts one message. Returns an error on delivery failure; callers
// decide whether that failure matters (the tool dispatcher swallows it).
func (c *Client) Send(ctx context.Context, text string) error {
	if c.token == "" || c.user == "" {
		c.logger.Debug("pushover not configured, dropping notification")
		return nil
	}

	form := url.Values{
		"token":   {c.token},
		"user":    {c.user},
		"message": {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/1/messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: %s", resp.Status)
	}
	return nil
}
