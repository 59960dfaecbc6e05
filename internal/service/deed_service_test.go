package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/domain"
	"deedcheck/internal/extractor"
	"deedcheck/internal/metrics"
	"deedcheck/internal/port"
	"deedcheck/internal/service"
	"deedcheck/internal/validator"
	"deedcheck/internal/validator/deed"
	"deedcheck/mocks"
)

const validPayload = `{"doc_id":"DOC-7","signed_date":"2024-01-10","recorded_date":"2024-01-15",
"numeric_amount":100000000,"written_amount":"One Million Dollars","county_raw":"Los Angelas Co."}`

const mismatchPayload = `{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
"numeric_amount":125000000,"written_amount":"One Million Two Hundred Thousand","county_raw":"Orange"}`

func testReference(t *testing.T) *deed.Reference {
	t.Helper()
	ref, err := deed.NewReference(
		[]string{"Los Angeles", "Orange", "San Benito"},
		map[string]decimal.Decimal{
			"Los Angeles": decimal.RequireFromString("0.0055"),
			"Orange":      decimal.RequireFromString("0.011"),
		})
	require.NoError(t, err)
	return ref
}

func testPipeline(t *testing.T) *validator.Pipeline {
	t.Helper()
	n, err := validator.NewScorerRegistry().NewNormalizer("", deed.DefaultMatchThreshold)
	require.NoError(t, err)
	return validator.NewPipeline(n)
}

func newService(t *testing.T, deps service.DeedServiceDeps) service.DeedService {
	t.Helper()
	svc, err := service.NewDeedService(testPipeline(t), testReference(t), deps)
	require.NoError(t, err)
	return svc
}

func TestNewDeedService_RequiresPipelineAndReference(t *testing.T) {
	_, err := service.NewDeedService(nil, testReference(t), service.DeedServiceDeps{})
	assert.Error(t, err)

	_, err = service.NewDeedService(testPipeline(t), nil, service.DeedServiceDeps{})
	assert.ErrorIs(t, err, domain.ErrInvalidReferenceData)
}

func TestValidate_Accepted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := new(mocks.MockValidationRunRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(run *domain.ValidationRun) bool {
		return run.Status == domain.RunStatusValid &&
			run.Source == domain.RunSourceRecord &&
			run.DocumentID == "DOC-7" &&
			run.FailureKind == nil &&
			len(run.Enriched) > 0 &&
			run.Failure == nil
	})).Return(nil)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo, Metrics: m})
	res, err := svc.Validate(context.Background(), json.RawMessage(validPayload))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.RunID)
	assert.Equal(t, domain.RunStatusValid, res.Status)
	require.True(t, res.Outcome.OK())
	assert.Equal(t, "Los Angeles", res.Outcome.Record.CountyCanonical)
	assert.Equal(t, int64(550000), res.Outcome.Record.TaxOwed)
	assert.Equal(t, domain.FieldStatusValid, res.FieldStatuses[deed.FieldCountyRaw].Status)
	assert.Nil(t, res.Extracted)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("valid", "")))
	repo.AssertExpectations(t)
}

func TestValidate_Rejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := new(mocks.MockValidationRunRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(run *domain.ValidationRun) bool {
		return run.Status == domain.RunStatusRejected &&
			run.FailureKind != nil && *run.FailureKind == domain.FailureAmountMismatch &&
			run.Enriched == nil &&
			len(run.Failure) > 0
	})).Return(nil)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo, Metrics: m})
	res, err := svc.Validate(context.Background(), json.RawMessage(mismatchPayload))

	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRejected, res.Status)
	require.NotNil(t, res.Outcome.Failure)
	assert.Equal(t, domain.FailureAmountMismatch, res.Outcome.Failure.Kind)
	assert.Equal(t, domain.FieldStatusInvalid, res.FieldStatuses[deed.FieldWrittenAmount].Status)
	assert.Equal(t, domain.FieldStatusUnchecked, res.FieldStatuses[deed.FieldCountyRaw].Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("rejected", "AmountMismatch")))
	repo.AssertExpectations(t)
}

func TestValidate_MalformedPayloadIsAuditedAsString(t *testing.T) {
	repo := new(mocks.MockValidationRunRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(run *domain.ValidationRun) bool {
		var s string
		return json.Unmarshal(run.Input, &s) == nil && s == "{not json"
	})).Return(nil)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo})
	res, err := svc.Validate(context.Background(), json.RawMessage("{not json"))

	require.NoError(t, err)
	assert.Equal(t, domain.FailureMalformedRecord, res.Outcome.Failure.Kind)
	repo.AssertExpectations(t)
}

func TestValidate_EmptyPayload(t *testing.T) {
	svc := newService(t, service.DeedServiceDeps{})
	_, err := svc.Validate(context.Background(), json.RawMessage("  "))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestValidate_AuditFailureDoesNotChangeResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := new(mocks.MockValidationRunRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo, Metrics: m})
	res, err := svc.Validate(context.Background(), json.RawMessage(validPayload))

	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusValid, res.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditFailures))
}

func TestValidate_NoRepoNoMetrics(t *testing.T) {
	svc := newService(t, service.DeedServiceDeps{})
	res, err := svc.Validate(context.Background(), json.RawMessage(validPayload))
	require.NoError(t, err)
	assert.True(t, res.Outcome.OK())
}

func TestExtractAndValidate_Success(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ext := new(mocks.MockDeedExtractor)
	ext.On("Extract", mock.Anything, port.ExtractInput{Text: "GRANT DEED ..."}).Return(&port.ExtractOutput{
		Record:           json.RawMessage(validPayload),
		ConfidenceScores: json.RawMessage(`{"county_raw":0.3,"signed_date":0.95,"notes":"n/a"}`),
		ModelUsed:        "claude-test",
	}, nil)
	repo := new(mocks.MockValidationRunRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(run *domain.ValidationRun) bool {
		return run.Source == domain.RunSourceExtracted && run.ModelUsed == "claude-test"
	})).Return(nil)

	svc := newService(t, service.DeedServiceDeps{Extractor: ext, RunRepo: repo, Metrics: m})
	res, err := svc.ExtractAndValidate(context.Background(), "GRANT DEED ...")

	require.NoError(t, err)
	assert.Equal(t, domain.RunSourceExtracted, res.Source)
	assert.Equal(t, "claude-test", res.ModelUsed)
	assert.JSONEq(t, validPayload, string(res.Extracted))
	assert.Equal(t, map[string]float64{"county_raw": 0.3, "signed_date": 0.95}, res.Confidence)
	assert.Equal(t, domain.FieldStatusUnsure, res.FieldStatuses[deed.FieldCountyRaw].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractAttempts.WithLabelValues("claude-test", "ok")))
	repo.AssertExpectations(t)
}

func TestExtractAndValidate_ExtractorError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ext := new(mocks.MockDeedExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("bad gateway"))

	svc := newService(t, service.DeedServiceDeps{Extractor: ext, Metrics: m})
	_, err := svc.ExtractAndValidate(context.Background(), "GRANT DEED")

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "bad gateway")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractAttempts.WithLabelValues("", "error")))
}

func TestExtractAndValidate_RateLimitIsPreserved(t *testing.T) {
	ext := new(mocks.MockDeedExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("all", errors.New("all extractors rate limited"), 30*time.Second))

	svc := newService(t, service.DeedServiceDeps{Extractor: ext})
	_, err := svc.ExtractAndValidate(context.Background(), "GRANT DEED")

	var rlErr *extractor.RateLimitError
	assert.ErrorAs(t, err, &rlErr)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractAndValidate_NoExtractor(t *testing.T) {
	svc := newService(t, service.DeedServiceDeps{})
	_, err := svc.ExtractAndValidate(context.Background(), "GRANT DEED")
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtractAndValidate_EmptyText(t *testing.T) {
	ext := new(mocks.MockDeedExtractor)
	svc := newService(t, service.DeedServiceDeps{Extractor: ext})

	_, err := svc.ExtractAndValidate(context.Background(), " \n\t")
	assert.ErrorIs(t, err, domain.ErrEmptyDocumentText)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractAndValidate_ExtractedRecordRejected(t *testing.T) {
	ext := new(mocks.MockDeedExtractor)
	ext.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{
		Record:    json.RawMessage(`{"signed_date":"2024-01-10"}`),
		ModelUsed: "gpt-test",
	}, nil)

	svc := newService(t, service.DeedServiceDeps{Extractor: ext})
	res, err := svc.ExtractAndValidate(context.Background(), "GRANT DEED")

	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRejected, res.Status)
	assert.Equal(t, domain.FailureMalformedRecord, res.Outcome.Failure.Kind)
}

func TestGetRun(t *testing.T) {
	id := uuid.New()
	repo := new(mocks.MockValidationRunRepo)
	repo.On("GetByID", mock.Anything, id).Return(&domain.ValidationRun{ID: id, Status: domain.RunStatusValid}, nil)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo})
	run, err := svc.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
}

func TestGetRun_NotFound(t *testing.T) {
	repo := new(mocks.MockValidationRunRepo)
	repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrRunNotFound)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo})
	_, err := svc.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	repo := new(mocks.MockValidationRunRepo)
	repo.On("List", mock.Anything, 20, 10).Return([]domain.ValidationRun{{ID: uuid.New()}}, 21, nil)

	svc := newService(t, service.DeedServiceDeps{RunRepo: repo})
	runs, total, err := svc.ListRuns(context.Background(), 20, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, 21, total)
}

func TestRuns_AuditUnavailable(t *testing.T) {
	svc := newService(t, service.DeedServiceDeps{})

	_, err := svc.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrAuditUnavailable)
	_, _, err = svc.ListRuns(context.Background(), 0, 20)
	assert.ErrorIs(t, err, domain.ErrAuditUnavailable)
}
