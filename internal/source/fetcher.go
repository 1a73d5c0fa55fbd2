package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"MarketPulse/internal/service/ratelimit"
	phttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

// ErrRateLimited is returned when the local limiter denies a request.
// Callers switch to fallback data without retrying.
var ErrRateLimited = errors.New("source rate limited")

const maxRetries = 3

// Budget is a source's local rate-limit allowance.
type Budget struct {
	Limit  int
	Window time.Duration
}

// Fetcher wraps the shared HTTP client with local rate limiting and
// linear-backoff retries. One Fetcher is shared by all sources; budgets
// are keyed per source name.
type Fetcher struct {
	client  *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
	sleep   func(time.Duration)
}

func NewFetcher(client *phttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Fetcher {
	return &Fetcher{client: client, limiter: limiter, log: log, sleep: time.Sleep}
}

// GetJSON performs a rate-limited GET and decodes the JSON body into dest.
// The retry delay scales linearly with the attempt number. A 429 from the
// upstream counts as a retryable attempt; a denial from the local limiter
// returns ErrRateLimited immediately.
func (f *Fetcher) GetJSON(ctx context.Context, key string, budget Budget, retryDelay time.Duration, opts *phttp.RequestOptions, dest any) error {
	body, err := f.get(ctx, key, budget, retryDelay, opts)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", key, err)
	}
	return nil
}

// GetBody performs a rate-limited GET and returns the raw body. Used by
// sources that parse HTML instead of JSON.
func (f *Fetcher) GetBody(ctx context.Context, key string, budget Budget, retryDelay time.Duration, opts *phttp.RequestOptions) ([]byte, error) {
	return f.get(ctx, key, budget, retryDelay, opts)
}

func (f *Fetcher) get(ctx context.Context, key string, budget Budget, retryDelay time.Duration, opts *phttp.RequestOptions) ([]byte, error) {
	if !f.limiter.Allow(key, budget.Limit, budget.Window) {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, key)
	}
	if opts.Method == "" {
		opts.Method = phttp.MethodGet
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			f.sleep(retryDelay * time.Duration(attempt-1))
		}

		body, status, err := f.do(ctx, opts)
		switch {
		case err != nil:
			lastErr = err
			f.log.Warn("source request failed",
				logger.String("source", key),
				logger.Int("attempt", attempt),
				logger.Error(err))
		case status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("upstream throttled %s (429)", key)
			f.log.Warn("source throttled upstream",
				logger.String("source", key),
				logger.Int("attempt", attempt))
		case status >= 500:
			lastErr = fmt.Errorf("%s returned status %d", key, status)
			f.log.Warn("source server error",
				logger.String("source", key),
				logger.Int("status", status),
				logger.Int("attempt", attempt))
		case status < 200 || status >= 300:
			// 4xx other than 429 will not improve on retry.
			return nil, fmt.Errorf("%s returned status %d", key, status)
		default:
			return body, nil
		}
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", key, maxRetries, lastErr)
}

func (f *Fetcher) do(ctx context.Context, opts *phttp.RequestOptions) ([]byte, int, error) {
	resp, err := f.client.SendRequest(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
