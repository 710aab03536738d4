package retry

import (
	"context"
	"time"
)

// Do calls fn until it succeeds, fails permanently, or runs out of
// attempts. It returns the last error when all attempts fail or ctx is
// already done, and the context error if cancelled while backing off.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ctx.Err() != nil || !IsTransient(err) {
			return zero, err
		}

		// No sleep after the last attempt.
		if attempt == attempts-1 {
			break
		}

		delay := effectiveDelay(cfg.Delay(attempt), err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(Attempt{Number: attempt + 1, MaxAttempts: attempts, Err: err, Delay: delay})
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}
