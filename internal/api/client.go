package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

const (
	defaultUserAgent = "lingobuddy"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

var errMissingText = errors.New("response has no text field")

// Client talks to the LingoBuddy service over HTTP. It sends each request
// exactly once.
type Client struct {
	endpoint  string
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client for endpoint. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Send posts req to the service. Every failure is a *ServiceError.
func (c *Client) Send(ctx context.Context, req Request) (*Payload, error) {
	body, err := json.Marshal(req.Wire())
	if err != nil {
		return nil, newTransportError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newTransportError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("tutor request failed",
			zap.String("mode", string(req.Config.Mode)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, newTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	c.logger.Debug("tutor request",
		zap.String("mode", string(req.Config.Mode)),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(data)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newApplicationError(resp.StatusCode, data)
	}
	if readErr != nil {
		return nil, newTransportError(readErr)
	}

	var wire struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, newTransportError(err)
	}
	if wire.Text == nil {
		return nil, newTransportError(errMissingText)
	}
	return &Payload{Text: *wire.Text}, nil
}
