package domain

import "errors"

var (
	ErrInvalidReferenceData = errors.New("invalid reference data")
	ErrInvalidPayload       = errors.New("request payload is not valid JSON")
	ErrExtractionFailed     = errors.New("structured extraction failed")
	ErrRunNotFound          = errors.New("validation run not found")
	ErrAuditUnavailable     = errors.New("validation run audit log is not configured")
	ErrEmptyDocumentText    = errors.New("document text is empty")
)
