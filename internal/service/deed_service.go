package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deedcheck/internal/domain"
	"deedcheck/internal/metrics"
	"deedcheck/internal/port"
	"deedcheck/internal/validator"
	"deedcheck/internal/validator/deed"
)

// ValidationResult is the outcome of one validation run plus the data the
// caller needs to present it.
type ValidationResult struct {
	RunID         uuid.UUID                         `json:"run_id"`
	Source        domain.RunSource                  `json:"source"`
	Status        domain.RunStatus                  `json:"status"`
	Outcome       *validator.Outcome                `json:"outcome"`
	FieldStatuses map[string]*validator.FieldStatus `json:"field_statuses"`
	Extracted     json.RawMessage                   `json:"extracted,omitempty"`
	Confidence    map[string]float64                `json:"confidence_scores,omitempty"`
	ModelUsed     string                            `json:"model_used,omitempty"`
}

// DeedService defines the deed validation contract.
type DeedService interface {
	Validate(ctx context.Context, payload json.RawMessage) (*ValidationResult, error)
	ExtractAndValidate(ctx context.Context, text string) (*ValidationResult, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error)
	ListRuns(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
}

type deedService struct {
	pipeline  *validator.Pipeline
	ref       *deed.Reference
	extractor port.DeedExtractor
	runRepo   port.ValidationRunRepository
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

// DeedServiceDeps bundles the optional collaborators of the deed service.
type DeedServiceDeps struct {
	Extractor port.DeedExtractor
	RunRepo   port.ValidationRunRepository
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewDeedService creates a new DeedService implementation. The pipeline and
// reference are required; every dependency in deps may be nil.
func NewDeedService(pipeline *validator.Pipeline, ref *deed.Reference, deps DeedServiceDeps) (DeedService, error) {
	if pipeline == nil {
		return nil, errors.New("deed service: pipeline is required")
	}
	if ref == nil {
		return nil, fmt.Errorf("deed service: %w: reference data not loaded", domain.ErrInvalidReferenceData)
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &deedService{
		pipeline:  pipeline,
		ref:       ref,
		extractor: deps.Extractor,
		runRepo:   deps.RunRepo,
		metrics:   deps.Metrics,
		log:       log.Named("deed_service"),
		now:       time.Now,
	}, nil
}

func (s *deedService) Validate(ctx context.Context, payload json.RawMessage) (*ValidationResult, error) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil, fmt.Errorf("%w: record payload is empty", domain.ErrInvalidPayload)
	}
	return s.run(ctx, domain.RunSourceRecord, payload, nil, "")
}

func (s *deedService) ExtractAndValidate(ctx context.Context, text string) (*ValidationResult, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: no extractor configured", domain.ErrExtractionFailed)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocumentText
	}

	start := s.now()
	out, err := s.extractor.Extract(ctx, port.ExtractInput{Text: text})
	if err != nil {
		s.metrics.ObserveExtraction("", "error", s.now().Sub(start))
		s.log.Warn("extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	s.metrics.ObserveExtraction(out.ModelUsed, "ok", s.now().Sub(start))

	return s.run(ctx, domain.RunSourceExtracted, out.Record, decodeConfidence(out.ConfidenceScores), out.ModelUsed)
}

func (s *deedService) run(ctx context.Context, source domain.RunSource, payload json.RawMessage, confidence map[string]float64, model string) (*ValidationResult, error) {
	runID := uuid.New()
	start := s.now()

	outcome, err := s.pipeline.RunJSON(payload, s.ref)
	if err != nil {
		return nil, fmt.Errorf("running validation pipeline: %w", err)
	}
	s.metrics.ObserveValidateLatency(string(source), s.now().Sub(start))

	res := &ValidationResult{
		RunID:         runID,
		Source:        source,
		Status:        domain.RunStatusValid,
		Outcome:       outcome,
		FieldStatuses: validator.ComputeFieldStatuses(outcome, confidence),
		Confidence:    confidence,
		ModelUsed:     model,
	}
	if source == domain.RunSourceExtracted {
		res.Extracted = payload
	}

	fields := []zap.Field{zap.String("run_id", runID.String()), zap.String("source", string(source))}
	if model != "" {
		fields = append(fields, zap.String("model", model))
	}
	if outcome.OK() {
		s.metrics.IncrementOutcome(string(domain.RunStatusValid), "")
		s.metrics.ObserveCountyMatch(outcome.Record.CountyMatchScore)
		s.log.Info("deed accepted", append(fields,
			zap.String("county", outcome.Record.CountyCanonical),
			zap.Int64("tax_owed", outcome.Record.TaxOwed))...)
	} else {
		res.Status = domain.RunStatusRejected
		f := outcome.Failure
		s.metrics.IncrementOutcome(string(domain.RunStatusRejected), string(f.Kind))
		s.log.Info("deed rejected", append(fields,
			zap.String("kind", string(f.Kind)),
			zap.String("stage", string(f.Stage)),
			zap.Strings("fields", f.FieldPaths))...)
	}

	s.audit(ctx, res, payload)
	return res, nil
}

// audit appends the run to the audit log. Failures are logged and counted
// but never change the validation result.
func (s *deedService) audit(ctx context.Context, res *ValidationResult, payload json.RawMessage) {
	if s.runRepo == nil {
		return
	}
	run, err := buildRun(res, payload)
	if err == nil {
		err = s.runRepo.Create(ctx, run)
	}
	if err != nil {
		s.metrics.IncrementAuditFailure()
		s.log.Error("failed to write validation run", zap.String("run_id", res.RunID.String()), zap.Error(err))
	}
}

func buildRun(res *ValidationResult, payload json.RawMessage) (*domain.ValidationRun, error) {
	run := &domain.ValidationRun{
		ID:        res.RunID,
		Source:    res.Source,
		Status:    res.Status,
		Input:     auditInput(payload),
		ModelUsed: res.ModelUsed,
	}
	var err error
	if res.Outcome.OK() {
		run.DocumentID = res.Outcome.Record.DocumentID
		run.Enriched, err = json.Marshal(res.Outcome.Record)
	} else {
		kind := res.Outcome.Failure.Kind
		run.FailureKind = &kind
		run.Failure, err = json.Marshal(res.Outcome.Failure)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding validation run: %w", err)
	}
	return run, nil
}

// auditInput keeps malformed payloads auditable by storing them as a JSON string.
func auditInput(payload json.RawMessage) json.RawMessage {
	if json.Valid(payload) {
		return payload
	}
	quoted, _ := json.Marshal(string(payload))
	return quoted
}

// decodeConfidence flattens extractor confidence scores to field → score.
// Scores that are not numbers are ignored.
func decodeConfidence(raw json.RawMessage) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(map[string]float64, len(generic))
	for k, v := range generic {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}

func (s *deedService) GetRun(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error) {
	if s.runRepo == nil {
		return nil, domain.ErrAuditUnavailable
	}
	return s.runRepo.GetByID(ctx, id)
}

func (s *deedService) ListRuns(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	if s.runRepo == nil {
		return nil, 0, domain.ErrAuditUnavailable
	}
	return s.runRepo.List(ctx, offset, limit)
}
