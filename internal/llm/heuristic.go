package llm

import (
	"context"
	"strings"
)

// HeuristicCounter estimates tokens locally from word count. It never
// fails and makes no network calls, which makes it suitable for previews.
type HeuristicCounter struct{}

func (HeuristicCounter) CountTokens(_ context.Context, text string) (int, error) {
	return EstimateTokens(text), nil
}

// EstimateTokens gives a rough token count using ~1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}
