// Package transport wraps one-shot control calls to a gateway's request
// form endpoints (health, auth refresh) with a per-call timeout and a
// bounded exponential-backoff retry policy. The persistent duplex stream
// does not go through this package; only request/response calls do.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/user/clawline/internal/endpoint"
)

// TimeoutError reports that a single request exceeded its time budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Budget)
}

// Options configures a single request.
type Options struct {
	Method string // defaults to GET
	Header http.Header
	Body   []byte
}

// Response is a fully-read response. The transport drains bodies so that
// retries never leak connections.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// RetryPolicy bounds DoWithRetry. MaxRetries counts additional attempts
// after the first, so a policy with MaxRetries 3 makes at most 4 calls.
type RetryPolicy struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns the policy used for control calls:
// 10s per-call timeout, 3 retries, 500ms base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
	}
}

// transientStatuses are HTTP statuses worth retrying. Every other status,
// including the rest of 4xx, is returned to the caller immediately.
var transientStatuses = map[int]bool{
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

// IsTransientStatus reports whether an HTTP status is in the retryable set.
func IsTransientStatus(status int) bool {
	return transientStatuses[status]
}

// Client issues resilient one-shot requests.
type Client struct {
	http *http.Client
}

// NewClient creates a transport client. The underlying http.Client carries
// no timeout of its own; budgets come from the per-call context.
func NewClient() *Client {
	return &Client{http: &http.Client{}}
}

// Do issues one request. If no response arrives within timeout the
// in-flight request is cancelled and a *TimeoutError carrying the budget
// is returned. Non-timeout failures propagate unchanged.
func (c *Client) Do(ctx context.Context, rawurl string, opts Options, timeout time.Duration) (*Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(callCtx, method, rawurl, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &TimeoutError{Budget: timeout}
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, &TimeoutError{Budget: timeout}
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

// DoWithRetry calls Do, retrying transient outcomes with exponential
// backoff (BaseDelay × 2^(attempt-1)). Non-transient outcomes return
// immediately. When retries are exhausted the LAST transient response or
// error is returned as-is; the transport never synthesizes a distinct
// "retries exhausted" error.
func (c *Client) DoWithRetry(ctx context.Context, rawurl string, opts Options, policy RetryPolicy) (*Response, error) {
	var lastResp *Response
	var lastErr error

	attempts := policy.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.Do(ctx, rawurl, opts, policy.Timeout)
		if err != nil {
			if !isTransientError(err) {
				return nil, err
			}
			lastResp, lastErr = nil, err
		} else if IsTransientStatus(resp.Status) {
			lastResp, lastErr = resp, nil
		} else {
			return resp, nil
		}

		if attempt == attempts {
			break
		}

		delay := policy.BaseDelay << (attempt - 1)
		slog.Debug("transient outcome, backing off",
			"url", rawurl, "attempt", attempt, "delay", delay, "error", lastErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return lastResp, lastErr
}

// isTransientError classifies network-level failures (connection refused,
// reset, per-attempt timeout) as retryable. http.Client wraps everything
// in *url.Error, including permanent caller mistakes like an unsupported
// scheme or a rejected TLS certificate, so the check unwraps to the
// network layer instead of matching the whole url.Error family.
func isTransientError(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// healthPayload is the liveness response body of a gateway.
type healthPayload struct {
	Status string `json:"status"`
}

// Health probes the gateway's request-form health endpoint and returns the
// reported status string.
func (c *Client) Health(ctx context.Context, gatewayEndpoint string, policy RetryPolicy) (string, error) {
	u := endpoint.ToRequestForm(gatewayEndpoint) + "/health"
	resp, err := c.DoWithRetry(ctx, u, Options{}, policy)
	if err != nil {
		return "", fmt.Errorf("health check: %w", err)
	}
	if resp.Status != http.StatusOK {
		return "", fmt.Errorf("health check: unexpected status %d", resp.Status)
	}
	var payload healthPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return "", fmt.Errorf("health check: %w", err)
	}
	return payload.Status, nil
}
