package reddit

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry policy for batch-lookup chunks: exponential starting at 2s, doubling
// up to 256s, 8 attempts in total.
const (
	retryInitialInterval = 2 * time.Second
	retryMaxInterval     = 256 * time.Second
	retryMaxAttempts     = 8
)

// newRetryPolicy returns the default backoff for one lookup chunk.
func newRetryPolicy() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(retryInitialInterval),
		backoff.WithMaxInterval(retryMaxInterval),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		// The attempt cap bounds the policy; elapsed time must not cut
		// a slow-but-progressing chunk short.
		backoff.WithMaxElapsedTime(0),
	), retryMaxAttempts-1)
}
