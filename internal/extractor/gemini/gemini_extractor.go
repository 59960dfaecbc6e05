package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor"
	"deedcheck/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
)

// Extractor implements port.DeedExtractor using Google's Gemini API.
type Extractor struct {
	model  string
	client *extractor.Client
}

// NewExtractor creates a Gemini-based deed extractor. The endpoint is
// derived from the model.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return NewExtractorWithEndpoint(cfg, "")
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := extractor.ModelOrDefault(cfg, defaultModel)
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Extractor{
		model: model,
		client: extractor.NewClient("gemini", endpoint, cfg, map[string]string{
			"x-goog-api-key": cfg.APIKey,
		}),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	prompt := extractor.BuildDeedPrompt(input.Text)

	body, err := e.client.PostJSON(ctx, generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			MaxOutputTokens:  extractor.MaxOutputTokens,
		},
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(body, e.model, prompt)
}

// generateResponse models the parts of a generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model, prompt string) (*port.ExtractOutput, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling gemini response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from gemini: no candidates")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS): deed envelope exceeded %d tokens", extractor.MaxOutputTokens)
	}
	if len(cand.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini: no parts")
	}
	return extractor.DecodeEnvelope(cand.Content.Parts[0].Text, model, prompt)
}
