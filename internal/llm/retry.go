package llm

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultMaxRetries is the number of attempts made for a retryable call.
const DefaultMaxRetries = 3

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

const maxBackoff = 30 * time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter. The base
// doubles per attempt up to maxBackoff.
func Backoff(attempt int) time.Duration {
	base := maxBackoff
	if attempt < 5 {
		base = time.Duration(1<<uint(max(attempt, 0))) * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
