// Package retry implements a small bounded retry budget with exponential
// backoff for transient provider errors. Validation and configuration
// errors must never be retried; callers decide what counts as transient.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts times. After a failed attempt it waits
// base, 2*base, 4*base... before trying again. A permanent error (one
// the transient classifier rejects) is returned immediately.
func Do(ctx context.Context, attempts int, base time.Duration, transient func(error) bool, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := base
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		err = fn()
		if err == nil {
			return nil
		}
		if transient == nil || !transient(err) {
			return err
		}
	}
	return err
}
