package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited throttles every call of the wrapped client through a shared
// token bucket.
type RateLimited struct {
	Client
	limiter *rate.Limiter
}

// NewRateLimited wraps c so that at most perSecond calls start each second,
// with bursts up to burst. A non-positive perSecond disables limiting.
func NewRateLimited(c Client, perSecond float64, burst int) *RateLimited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{Client: c, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) CountTokens(ctx context.Context, text string) (int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, &TokenCountError{Err: fmt.Errorf("rate limit: %w", err)}
	}
	return r.Client.CountTokens(ctx, text)
}

func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", &GenerationError{Err: fmt.Errorf("rate limit: %w", err)}
	}
	return r.Client.Generate(ctx, prompt)
}
