package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	maxRetries int
	backoff    func(attempt int) time.Duration
	httpClient *http.Client
}

// AnthropicOption customizes an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) AnthropicOption {
	return func(c *AnthropicClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithMaxRetries sets the number of attempts for 429/5xx responses.
func WithMaxRetries(n int) AnthropicOption {
	return func(c *AnthropicClient) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff replaces the retry delay schedule.
func WithBackoff(fn func(attempt int) time.Duration) AnthropicOption {
	return func(c *AnthropicClient) { c.backoff = fn }
}

func NewAnthropicClient(apiKey, model string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicBaseURL,
		maxTokens:  4096,
		maxRetries: DefaultMaxRetries,
		backoff:    Backoff,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *anthropicError `json:"error"`
}

type anthropicCountResponse struct {
	InputTokens int             `json:"input_tokens"`
	Error       *anthropicError `json:"error"`
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string { return c.model }

// Generate sends prompt as a single user message and returns the text reply.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := c.post(ctx, "/v1/messages", anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &GenerationError{Err: err}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &GenerationError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if apiResp.Error != nil {
		return "", &GenerationError{Err: fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)}
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" || block.Type == "" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &GenerationError{Err: fmt.Errorf("empty response from claude")}
	}
	return sb.String(), nil
}

// CountTokens asks the count_tokens endpoint how many input tokens text uses.
func (c *AnthropicClient) CountTokens(ctx context.Context, text string) (int, error) {
	body, err := c.post(ctx, "/v1/messages/count_tokens", anthropicRequest{
		Model:    c.model,
		Messages: []anthropicMessage{{Role: "user", Content: text}},
	})
	if err != nil {
		return 0, &TokenCountError{Err: err}
	}

	var apiResp anthropicCountResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return 0, &TokenCountError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if apiResp.Error != nil {
		return 0, &TokenCountError{Err: fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)}
	}
	return apiResp.InputTokens, nil
}

// post performs the request, retrying transient failures.
func (c *AnthropicClient) post(ctx context.Context, path string, payload anthropicRequest) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := range c.maxRetries {
		var body []byte
		body, lastErr = c.do(ctx, path, reqBody)
		if lastErr == nil {
			return body, nil
		}
		if !IsRetryable(lastErr) || attempt == c.maxRetries-1 {
			break
		}
		select {
		case <-time.After(c.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *AnthropicClient) do(ctx context.Context, path string, reqBody []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return respBody, nil
}

// Close releases idle connections.
func (c *AnthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
