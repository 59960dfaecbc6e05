package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor"
	"deedcheck/internal/port"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"
)

// Extractor implements port.DeedExtractor using the Anthropic Messages API.
type Extractor struct {
	model  string
	client *extractor.Client
}

// NewExtractor creates a Claude-based deed extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return &Extractor{
		model: extractor.ModelOrDefault(cfg, defaultModel),
		client: extractor.NewClient("claude", endpoint, cfg, map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": apiVersion,
		}),
	}
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	prompt := extractor.BuildDeedPrompt(input.Text)

	body, err := e.client.PostJSON(ctx, messagesRequest{
		Model:     e.model,
		MaxTokens: extractor.MaxOutputTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(body, e.model, prompt)
}

// messagesResponse models the parts of a Messages API response we read.
type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

func parseResponse(body []byte, model, prompt string) (*port.ExtractOutput, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling claude response: %w", err)
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): deed envelope exceeded %d tokens", extractor.MaxOutputTokens)
	}

	// The envelope may be split across several text blocks.
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from claude: no text blocks")
	}
	return extractor.DecodeEnvelope(text.String(), model, prompt)
}
