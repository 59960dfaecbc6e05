package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"deedcheck/internal/domain"
	"deedcheck/internal/extractor"
	"deedcheck/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("wrap: %w", domain.ErrInvalidPayload), http.StatusBadRequest, "INVALID_PAYLOAD"},
		{domain.ErrEmptyDocumentText, http.StatusBadRequest, "EMPTY_DOCUMENT_TEXT"},
		{domain.ErrExtractionFailed, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{domain.ErrRunNotFound, http.StatusNotFound, "RUN_NOT_FOUND"},
		{domain.ErrAuditUnavailable, http.StatusNotImplemented, "AUDIT_UNAVAILABLE"},
		{domain.ErrInvalidReferenceData, http.StatusInternalServerError, "INVALID_REFERENCE_DATA"},
		{extractor.NewRateLimitError("openai", errors.New("429"), 5*time.Second), http.StatusTooManyRequests, "EXTRACTOR_RATE_LIMITED"},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}
