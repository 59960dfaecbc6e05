package port

import (
	"context"
	"encoding/json"
)

// ExtractInput carries the OCR text of one deed.
type ExtractInput struct {
	Text string
}

// ExtractOutput contains the structured record produced by an extractor.
// The record is untrusted and must go through deed.DecodeRecord.
type ExtractOutput struct {
	Record           json.RawMessage
	ConfidenceScores json.RawMessage
	ModelUsed        string
	PromptUsed       string
}

// DeedExtractor turns unstructured deed text into a structured record.
type DeedExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
