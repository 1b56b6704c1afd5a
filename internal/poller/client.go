package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; the poller talks to one or two hosts at a fixed cadence
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

var (
	// ErrTransport marks a request that failed before a response was received.
	ErrTransport = errors.New("transport failure")

	// ErrHTTPStatus marks a response with a non-2xx status code.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrParse marks a response body that could not be decoded.
	ErrParse = errors.New("malformed response body")
)

// StatusError reports a non-2xx response. It matches [ErrHTTPStatus] with errors.Is.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Is reports whether target is [ErrHTTPStatus].
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport error. It wraps [ErrTransport].
	Error error
}

// Err returns the transport error, or a [*StatusError] for a non-2xx
// response, or nil if the request succeeded.
func (r Response) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return &StatusError{Code: r.StatusCode}
	}
	return nil
}

// Client is an HTTP client wrapper for uncached GET requests.
//
// Every request asks intermediaries and the origin not to serve a cached
// copy. Response bodies are limited to 1MB.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new polling [Client].
//
// Timeouts are applied per-request via [Client.Fetch], not as a global
// client timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Fetch performs an uncached GET request and returns a structured [Response].
//
// A timeout of zero applies no deadline beyond the one carried by ctx.
// Fetch always returns a Response; errors are captured in the Error field.
// Use [Response.Err] to also treat non-2xx responses as failures.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("%w: failed to create request: %w", ErrTransport, err),
		}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("%w: request failed: %w", ErrTransport, err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
