// Package retry provides context-aware exponential backoff for the
// transient failures that source adapters hit on external APIs.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/airdrop-scanner/internal/logging"
)

// Config controls backoff behavior.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultConfig matches the adapters' contract: 3 attempts, base delay
// doubling, capped at 30s.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Func is an operation that can be retried. The attempt number starts at 1.
type Func func(ctx context.Context, attempt int) error

// Permanent wraps an error that must not be retried, such as a 403 or
// rate-limit response from a source.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Do executes fn with exponential backoff until it succeeds, returns a
// Permanent error, exhausts MaxAttempts, or the context is cancelled.
func Do(ctx context.Context, cfg *Config, fn Func) error {
	logger := logging.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if perm, ok := err.(*Permanent); ok {
			return perm.Err
		}
		lastErr = err

		if attempt >= cfg.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := delayFor(cfg, attempt)
		logger.WithFields(map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": cfg.MaxAttempts,
			"delay":       delay.String(),
			"error":       err.Error(),
		}).Warn("Operation failed, backing off before retry")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

func delayFor(cfg *Config, attempt int) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	return time.Duration(delay)
}
