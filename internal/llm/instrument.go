package llm

import (
	"context"
	"time"
)

const (
	OpCountTokens = "count_tokens"
	OpGenerate    = "generate"
)

// Observer receives the outcome of every LLM call.
type Observer interface {
	ObserveLLMCall(op, model string, d time.Duration, err error)
}

// Instrumented records call latency into Stats and forwards each call
// outcome to Observer. Either may be nil.
type Instrumented struct {
	Client
	Stats    *LLMStats
	Observer Observer
}

func (i *Instrumented) CountTokens(ctx context.Context, text string) (int, error) {
	start := time.Now()
	n, err := i.Client.CountTokens(ctx, text)
	i.record(OpCountTokens, time.Since(start), err)
	return n, err
}

func (i *Instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := i.Client.Generate(ctx, prompt)
	i.record(OpGenerate, time.Since(start), err)
	return out, err
}

func (i *Instrumented) record(op string, d time.Duration, err error) {
	if i.Stats != nil {
		i.Stats.Record(op, d, err != nil)
	}
	if i.Observer != nil {
		i.Observer.ObserveLLMCall(op, i.Client.Model(), d, err)
	}
}
