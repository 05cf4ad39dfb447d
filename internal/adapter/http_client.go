package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/airdrop-scanner/internal/retry"
)

// errRateLimited marks a 429/403 response: retries for that target are
// short-circuited, but sibling targets keep going.
var errRateLimited = errors.New("rate limited by source")

// rateLimiter implements a simple token bucket shared by all requests of
// one adapter.
type rateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	return &rateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond,
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now

	if r.tokens >= 1 {
		r.tokens--
		r.mu.Unlock()
		return nil
	}

	waitTime := time.Duration((1 - r.tokens) / r.refillRate * float64(time.Second))
	r.tokens = 0
	r.mu.Unlock()

	select {
	case <-time.After(waitTime):
		r.mu.Lock()
		r.lastRefill = time.Now()
		r.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pacedClient wraps an http.Client with token-bucket pacing and bounded
// exponential-backoff retries for transient failures.
type pacedClient struct {
	name    string // log prefix, e.g. "GitHub"
	client  *http.Client
	limiter *rateLimiter
	retry   *retry.Config
}

func newPacedClient(name string, timeout time.Duration, requestsPerSecond float64) *pacedClient {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &pacedClient{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		limiter: newRateLimiter(requestsPerSecond),
		retry:   retry.DefaultConfig(),
	}
}

// get fetches a URL with pacing and retries. A 429 or 403 returns
// errRateLimited without further attempts; 5xx and network errors are
// retried up to the retry ceiling.
func (c *pacedClient) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, c.retry, func(ctx context.Context, attempt int) error {
		if err := c.limiter.wait(ctx); err != nil {
			return &retry.Permanent{Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &retry.Permanent{Err: fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "airdrop-scanner/1.0")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, perr := strconv.Atoi(retryAfter); perr == nil {
					log.Printf("[%s] Rate limited, source asks for %ds pause", c.name, seconds)
				}
			}
			return &retry.Permanent{Err: fmt.Errorf("%w: status %d", errRateLimited, resp.StatusCode)}
		case resp.StatusCode >= 500:
			return fmt.Errorf("server error: status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &retry.Permanent{Err: fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, string(raw))}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return body, nil
}
