// Package transport provides the HTTP client shared by the provider
// adapters: pooled connections, bounded retry with exponential backoff
// for transient failures, and a per-provider circuit breaker that stops
// calls to an endpoint that keeps failing.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourorg/payment-router/internal/circuitbreaker"
	"github.com/yourorg/payment-router/internal/provider"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = 200 * time.Millisecond
	defaultTimeout     = 10 * time.Second
)

// Client wraps an http.Client with retry and circuit breaking. A single
// Client is shared by all adapters and all concurrent requests; the
// underlying transport pools connections and needs no per-request
// locking.
type Client struct {
	httpClient  *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	maxAttempts int
	baseBackoff time.Duration
}

// NewClient creates a Client with pooled connections and default retry
// settings (3 attempts, backoff doubling from 200ms).
func NewClient(breaker *circuitbreaker.CircuitBreaker) *Client {
	if breaker == nil {
		panic("transport: circuit breaker cannot be nil")
	}
	t := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout, Transport: t},
		breaker:     breaker,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
	}
}

// NewClientWithSettings creates a Client with explicit retry settings.
func NewClientWithSettings(breaker *circuitbreaker.CircuitBreaker, httpClient *http.Client, maxAttempts int, baseBackoff time.Duration) *Client {
	if breaker == nil {
		panic("transport: circuit breaker cannot be nil")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		httpClient:  httpClient,
		breaker:     breaker,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
	}
}

// retryable reports whether an HTTP status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Do issues the request produced by build, retrying transport errors and
// retryable statuses (5xx, 429) with doubling backoff. build is called
// once per attempt so the body can be re-sent. On success it returns the
// final status code and fully-read body. Transport-level exhaustion and
// an open circuit both come back as provider.ErrUnavailable; context
// cancellation comes back as ctx.Err().
func (c *Client) Do(ctx context.Context, providerName string, build func(ctx context.Context) (*http.Request, error)) (int, []byte, error) {
	if !c.breaker.Allow(providerName) {
		return 0, nil, fmt.Errorf("%w: circuit open for %s", provider.ErrUnavailable, providerName)
	}

	var lastErr error
	backoff := c.baseBackoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := build(ctx)
		if err != nil {
			// Request construction is deterministic; retrying cannot help.
			return 0, nil, fmt.Errorf("%w: building request for %s: %v", provider.ErrProvider, providerName, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			if ctx.Err() != nil {
				return 0, nil, ctx.Err()
			}
			lastErr = readErr
			continue
		}

		if retryable(resp.StatusCode) {
			lastErr = fmt.Errorf("received HTTP %d", resp.StatusCode)
			continue
		}

		c.breaker.RecordSuccess(providerName)
		return resp.StatusCode, body, nil
	}

	c.breaker.RecordFailure(providerName)
	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return 0, nil, fmt.Errorf("%w: %s after %d attempts: %v", provider.ErrUnavailable, providerName, c.maxAttempts, lastErr)
}
