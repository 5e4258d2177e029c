package api

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
	"strings"
	"time"
)

// DefaultBaseURL is the backend address used when no configuration overrides it.
const DefaultBaseURL = "http://192.168.56.104:5000"

// Backend endpoints.
const (
	PathPing         = "/api/ping"
	PathTestNmap     = "/api/test-nmap"
	PathHTTPLoadTest = "/api/http-load-test"
	PathCapacityTest = "/api/capacity-test"
	PathPingStats    = "/api/ping-stats"
	PathTraceroute   = "/api/traceroute"
	PathDNSLookup    = "/api/dns-lookup"
)

// Operation names used in error messages and metric labels.
const (
	OpPing       = "Ping"
	OpNmap       = "Nmap"
	OpHTTPLoad   = "HTTP load"
	OpCapacity   = "Capacity"
	OpPingStats  = "Ping stats"
	OpTraceroute = "Traceroute"
	OpDNSLookup  = "DNS lookup"
)

// ErrInvalidJSON is returned when a successful response body is not valid JSON.
var ErrInvalidJSON = errors.New("response body is not valid JSON")

// Config holds the client settings.
type Config struct {
	// BaseURL is the scheme and host of the backend, e.g. "http://10.0.0.5:5000".
	BaseURL string

	// TargetTimeout is forwarded to the backend as the per-request timeout it
	// uses against the target of load and capacity tests. Zero omits it.
	TargetTimeout time.Duration
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues requests to the traffic lab backend.
// Safe for concurrent use; it holds no per-request state.
type Client struct {
	baseURL       string
	targetTimeout time.Duration
	http          Doer
	logger        *slog.Logger
	metrics       *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request counts and latencies into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New validates cfg and returns a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.TargetTimeout < 0 {
		return nil, fmt.Errorf("target timeout must not be negative, got %s", cfg.TargetTimeout)
	}

	c := &Client{
		baseURL:       base,
		targetTimeout: cfg.TargetTimeout,
		http:          &http.Client{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func normalizeBaseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("base URL is required")
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// timeoutSeconds returns the target timeout in the backend's unit, or nil
// when unset so the field is left out of the body.
func (c *Client) timeoutSeconds() *float64 {
	if c.targetTimeout == 0 {
		return nil
	}
	s := c.targetTimeout.Seconds()
	return &s
}

func (c *Client) post(ctx context.Context, op, path string, body any) (Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req)
}

func (c *Client) get(ctx context.Context, op, path string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) (Response, error) {
	start := time.Now()
	c.logger.Debug("sending request", "op", op, "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, outcomeTransportError, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(op, outcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	elapsed := time.Since(start)
	c.logger.Debug("received response", "op", op, "status", resp.StatusCode, "bytes", len(data), "elapsed", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.observe(op, outcomeHTTPError, elapsed)
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if !json.Valid(data) {
		c.metrics.observe(op, outcomeInvalidJSON, elapsed)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidJSON)
	}

	c.metrics.observe(op, outcomeOK, elapsed)
	return Response(data), nil
}
