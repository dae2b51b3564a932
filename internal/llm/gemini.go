package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// GeminiClient uses Vertex AI Gemini models. Credentials come from
// Application Default Credentials.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiClient(ctx context.Context, projectID, region, model string) (*GeminiClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("gemini: projectID and region cannot be empty")
	}
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	}
	return &GeminiClient{client: client, model: gm, modelName: model}, nil
}

func (c *GeminiClient) Model() string { return c.modelName }

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("gemini generate: %w", err)}
	}
	text := responseText(resp)
	if text == "" {
		return "", &GenerationError{Err: fmt.Errorf("empty response from gemini")}
	}
	return text, nil
}

func (c *GeminiClient) CountTokens(ctx context.Context, text string) (int, error) {
	resp, err := c.model.CountTokens(ctx, genai.Text(text))
	if err != nil {
		return 0, &TokenCountError{Err: fmt.Errorf("gemini count tokens: %w", err)}
	}
	return int(resp.TotalTokens), nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
