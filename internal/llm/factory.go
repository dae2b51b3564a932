package llm

import (
	"context"
	"fmt"
)

// Options selects and configures a provider.
type Options struct {
	Provider string

	AnthropicAPIKey string
	AnthropicModel  string
	MaxRetries      int

	GoogleProject string
	GoogleRegion  string
	GeminiModel   string
}

// New returns an initialized client for the configured provider.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderAnthropic:
		if opts.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic: api key not provided")
		}
		return NewAnthropicClient(opts.AnthropicAPIKey, opts.AnthropicModel, WithMaxRetries(opts.MaxRetries)), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.GoogleProject, opts.GoogleRegion, opts.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", opts.Provider)
	}
}
