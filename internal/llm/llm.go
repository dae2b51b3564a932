// Package llm wraps the language-model services used for token counting
// and text generation.
package llm

import (
	"context"
	"fmt"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// TokenCounter estimates how many tokens a model would see for text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// TextGenerator produces a completion for a single prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a provider handle offering both capabilities. Implementations
// are safe for concurrent use.
type Client interface {
	TokenCounter
	TextGenerator
	Model() string
	Close() error
}

// TokenCountError reports a failed token count.
type TokenCountError struct {
	Err error
}

func (e *TokenCountError) Error() string {
	return fmt.Sprintf("count tokens: %v", e.Err)
}

func (e *TokenCountError) Unwrap() error { return e.Err }

// GenerationError reports a failed generation call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
