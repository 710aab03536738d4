// Package retry retries transient LLM failures with exponential backoff.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// DefaultMaxAttempts is the number of tries, the first included.
const DefaultMaxAttempts = 3

// Config holds retry configuration parameters.
type Config struct {
	// MaxAttempts counts the initial request as attempt 1.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter scales each delay by 1 + random(-Jitter, +Jitter).
	Jitter float64

	// OnRetry, if set, is called before each backoff sleep.
	OnRetry func(Attempt)
}

// Attempt describes a failed try that is about to be retried.
type Attempt struct {
	Number      int // 1-indexed
	MaxAttempts int
	Err         error
	Delay       time.Duration
}

// DefaultConfig returns three attempts with 1s initial delay doubling up to
// 30s, and 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a configuration that makes a single attempt.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay calculates the backoff before retrying after the given 0-indexed
// attempt: min(MaxDelay, InitialDelay * Multiplier^attempt), jittered.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		delay *= 1.0 + (rand.Float64()*2-1)*c.Jitter
	}

	return time.Duration(delay)
}
