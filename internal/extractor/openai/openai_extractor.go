package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor"
	"deedcheck/internal/port"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
)

// Extractor implements port.DeedExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	model  string
	client *extractor.Client
}

// NewExtractor creates an OpenAI-based deed extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return &Extractor{
		model: extractor.ModelOrDefault(cfg, defaultModel),
		client: extractor.NewClient("openai", endpoint, cfg, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
		}),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	Messages            []message      `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	prompt := extractor.BuildDeedPrompt(input.Text)

	body, err := e.client.PostJSON(ctx, chatRequest{
		Model:               e.model,
		MaxCompletionTokens: extractor.MaxOutputTokens,
		Messages:            []message{{Role: "user", Content: prompt}},
		ResponseFormat:      responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(body, e.model, prompt)
}

// chatResponse models the parts of a Chat Completions response we read.
type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.ExtractOutput, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai: no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): deed envelope exceeded %d tokens", extractor.MaxOutputTokens)
	}
	return extractor.DecodeEnvelope(choice.Message.Content, model, prompt)
}
