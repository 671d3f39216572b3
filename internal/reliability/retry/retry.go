package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config holds the backoff strategy for retried operations.
type Config struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultConfig suits short outbound HTTP calls.
func DefaultConfig() *Config {
	return &Config{
		Attempts:   3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
	}
}

// Do runs fn up to cfg.Attempts times with exponential backoff, honoring
// context cancellation between attempts.
func Do[T any](ctx context.Context, cfg *Config, log *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.Attempts {
			break
		}
		log.Warn("operation failed, retrying",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", delay),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, cfg.Attempts, lastErr)
}
