package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"RecoPulse/internal/service/ratelimit"
	xhttp "RecoPulse/pkg/http"
)

// HTTPServiceBase is the shared foundation for upstream data clients.
// It owns the HTTP client, the base URL and the per-upstream rate limit.
type HTTPServiceBase struct {
	name     string
	baseURL  string
	client   *xhttp.Client
	limiter  *ratelimit.Limiter
	minDelay time.Duration
}

// Option configures HTTPServiceBase.
type Option func(*HTTPServiceBase)

// WithLimiter spaces requests at least minInterval apart using a shared limiter.
func WithLimiter(l *ratelimit.Limiter, minInterval time.Duration) Option {
	return func(b *HTTPServiceBase) {
		b.limiter = l
		b.minDelay = minInterval
	}
}

// WithClient overrides the underlying HTTP client.
func WithClient(c *xhttp.Client) Option {
	return func(b *HTTPServiceBase) {
		b.client = c
	}
}

// NewHTTPServiceBase builds a base for the upstream called name.
func NewHTTPServiceBase(name, baseURL string, timeout time.Duration, opts ...Option) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b := &HTTPServiceBase{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
	return b
}

// Name returns the upstream name.
func (b *HTTPServiceBase) Name() string { return b.name }

// GetJSON issues GET baseURL+path with query and decodes the JSON response into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("%s http client not initialized", b.name)
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, b.name, 1, ratelimit.PerInterval(b.minDelay)); err != nil {
			return fmt.Errorf("%s rate limit: %w", b.name, err)
		}
	}
	if err := b.client.GetJSON(ctx, b.baseURL+path, query, dest); err != nil {
		return fmt.Errorf("%s get %s: %w", b.name, path, err)
	}
	return nil
}

// GetJSONWithRetry retries GetJSON up to attempts times on transient failures.
// Client errors (4xx other than 429) are returned immediately.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return b.GetJSON(ctx, path, query, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil || !retryable(err) {
			return err
		}
		if i == attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if !errors.As(err, &se) {
		return true
	}
	return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
}
