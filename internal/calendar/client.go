// Package calendar is a client for the calendar events REST API.
//
// Each method issues exactly one HTTP request and returns the decoded body.
// The client keeps no state between calls and is safe for concurrent use.
// It does not retry, cache, or validate events; the server owns those rules
// and its failures are surfaced as *APIError without translation.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultUserAgent identifies this client
	DefaultUserAgent = "calendar-client/1.0"

	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
)

// Client communicates with the events API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	userAgent  string
	logger     zerolog.Logger
	timeout    time.Duration
	limiter    *rate.Limiter
	wrappers   []func(http.RoundTripper) http.RoundTripper
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets an overall per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit paces requests to at most rps per second across all
// goroutines sharing the client. Zero or negative disables pacing (the default).
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "calendar_client").Logger()
	}
}

// WithRoundTripper wraps the client's transport. Wrappers are applied in the
// order given, so the last one added sees the request first.
func WithRoundTripper(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(c *Client) {
		c.wrappers = append(c.wrappers, wrap)
	}
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api"). An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers: http.Header{
			"Content-Type": []string{contentTypeJSON},
			"Accept":       []string{contentTypeJSON},
		},
		userAgent: DefaultUserAgent,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	// A caller-supplied *http.Client is copied, never mutated.
	if client.timeout > 0 || len(client.wrappers) > 0 {
		hc := *client.httpClient
		if client.timeout > 0 {
			hc.Timeout = client.timeout
		}
		if len(client.wrappers) > 0 {
			transport := hc.Transport
			if transport == nil {
				transport = http.DefaultTransport
			}
			for _, wrap := range client.wrappers {
				transport = wrap(transport)
			}
			hc.Transport = transport
		}
		client.httpClient = &hc
	}

	return client
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type operationKey struct{}

// Operation returns the client operation that issued req, e.g. "get_event",
// or "" for requests not sent by a Client. Transport wrappers use it as a
// low-cardinality label.
func Operation(req *http.Request) string {
	if op, ok := req.Context().Value(operationKey{}).(string); ok {
		return op
	}
	return ""
}

// do sends one request. body, when non-nil, is encoded as JSON. out, when
// non-nil, receives the decoded response; a nil out leaves the body unparsed.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := encodeValue(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	ctx = context.WithValue(ctx, operationKey{}, op)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("operation", op).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("operation", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read error response: %w", readErr)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        reqURL,
			Body:       respBody,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
