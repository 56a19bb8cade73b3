// Package api is the HTTP client for the UPI diagnosis backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/upi-triage/internal/metrics"
)

// Defaults for a backend client.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
)

// RequestIDHeader carries a per-call identifier for correlating logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to the diagnosis backend. It never retries.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	credentials    Credentials
	metrics        *metrics.Metrics
	logger         *slog.Logger
	onUnauthorized func()
	transport      http.RoundTripper
	timeout        time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithCredentials sets the bearer token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) {
		c.credentials = creds
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// OnUnauthorized registers a callback run after the credential is cleared
// following a 401.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend URL must be http or https: %s", baseURL)
	}

	c := &Client{
		baseURL:   parsed,
		timeout:   DefaultTimeout,
		transport: http.DefaultTransport,
		logger:    slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: &sessionTransport{
			base:        c.transport,
			credentials: c.credentials,
		},
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type request struct {
	body        io.Reader
	query       url.Values
	endpoint    string
	method      string
	path        string
	contentType string
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	return c.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, query url.Values, payload, out any) error {
	req := request{endpoint: endpoint, method: http.MethodPost, path: path, query: query}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return unexpectedError(fmt.Errorf("failed to marshal request: %w", err))
		}
		req.body = bytes.NewReader(body)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		target.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target.String(), r.body)
	if err != nil {
		return unexpectedError(fmt.Errorf("failed to create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	finish := func(int) {}
	if c.metrics != nil {
		finish = c.metrics.Track(r.endpoint)
	}

	c.logger.Debug("Backend request",
		"endpoint", r.endpoint,
		"method", r.method,
		"url", target.String(),
		"request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		finish(StatusNetwork)
		c.logger.Warn("Backend unreachable", "endpoint", r.endpoint, "request_id", requestID, "error", err)
		return networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()
	finish(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := serverError(resp.StatusCode, body)
		c.logger.Warn("Backend returned error",
			"endpoint", r.endpoint,
			"status", resp.StatusCode,
			"message", apiErr.Message,
			"request_id", requestID)
		if apiErr.IsUnauthorized() {
			c.resetSession()
		}
		return apiErr
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unexpectedError(fmt.Errorf("failed to decode %s response: %w", r.endpoint, err))
	}
	return nil
}

func (c *Client) resetSession() {
	if c.credentials != nil {
		if err := c.credentials.Clear(); err != nil {
			c.logger.Error("Failed to clear credential", "error", err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
