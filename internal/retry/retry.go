// Package retry provides a bounded exponential-backoff retry policy for
// fallible external calls (exchange fetches, notification sends).
package retry

import (
	"context"
	"log"
	"time"
)

// Policy describes how a fallible call is retried: a fixed attempt cap
// with an exponentially growing delay between attempts. The final
// attempt's error is returned to the caller unwrapped.
type Policy struct {
	MaxAttempts int           // total attempts, including the first (e.g., 3)
	BaseDelay   time.Duration // delay before the second attempt (e.g., 5s)
	Multiplier  float64       // backoff factor applied after each wait (e.g., 2.0)

	// OnRetry, if set, is called before each wait with the attempt number
	// that just failed. Used to feed retry metrics.
	OnRetry func(op string, attempt int, err error)
}

// Do runs fn up to MaxAttempts times. It waits BaseDelay*Multiplier^n
// between attempts and returns nil on the first success. Context
// cancellation during a wait aborts with ctx.Err().
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || attempt >= attempts {
			return err
		}

		log.Printf("[retry] %s attempt %d/%d failed: %v (next in %s)",
			op, attempt, attempts, err, delay)
		if p.OnRetry != nil {
			p.OnRetry(op, attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}
