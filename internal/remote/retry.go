package remote

import (
	"context"
	"time"
)

const (
	retryAttempts  = 4
	retryBaseDelay = 500 * time.Millisecond
)

// retrySleep is swapped out by tests.
var retrySleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// withRetry runs fn up to retryAttempts times with doubling backoff, but only
// while the failure is transient. A non-transient error returns immediately;
// exhausting the attempts escalates to an unavailable error, which callers
// treat as "remote unavailable, degrade to local build."
func withRetry(ctx context.Context, op string, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		if serr := retrySleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
	return unavailableError{op: op, last: err}
}
