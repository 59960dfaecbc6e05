package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"deedcheck/internal/port"
)

// DecodeEnvelope unpacks the {"data", "confidence_scores"} object every
// provider is prompted to return. Code fences are tolerated because some
// models add them despite the instructions.
func DecodeEnvelope(text, model, prompt string) (*port.ExtractOutput, error) {
	text = stripCodeFence(text)

	var parsed struct {
		Data             json.RawMessage `json:"data"`
		ConfidenceScores json.RawMessage `json:"confidence_scores"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return nil, fmt.Errorf("LLM output has no \"data\" object (raw: %s)", Truncate(text, 500))
	}

	return &port.ExtractOutput{
		Record:           parsed.Data,
		ConfidenceScores: parsed.ConfidenceScores,
		ModelUsed:        model,
		PromptUsed:       prompt,
	}, nil
}

// Truncate shortens s to maxLen bytes for error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
