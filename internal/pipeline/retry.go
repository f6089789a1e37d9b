package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const MaxRetries = 3

// IsRetryable reports whether a failed browser step is worth another attempt.
// Chrome start-up and page loads time out under load; other errors do not
// go away on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

// withRetry runs fn until it succeeds, fails permanently or ctx ends.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			return err
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
