package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{-1, time.Second, 1500 * time.Millisecond},
		{0, time.Second, 1500 * time.Millisecond},
		{2, 4 * time.Second, 6 * time.Second},
		{4, 16 * time.Second, 24 * time.Second},
		{5, maxBackoff, maxBackoff * 3 / 2},
		{34, maxBackoff, maxBackoff * 3 / 2},
		{64, maxBackoff, maxBackoff * 3 / 2},
		{1000, maxBackoff, maxBackoff * 3 / 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			for range 20 {
				d := Backoff(tt.attempt)
				if d < tt.min || d >= tt.max {
					t.Fatalf("Backoff(%d) = %v, want in [%v, %v)", tt.attempt, d, tt.min, tt.max)
				}
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", &RetryableError{StatusCode: 529, Message: "overloaded"})
	if !IsRetryable(wrapped) {
		t.Error("expected wrapped RetryableError to be retryable")
	}
	if IsRetryable(errors.New("bad request")) {
		t.Error("expected plain error not to be retryable")
	}
}
