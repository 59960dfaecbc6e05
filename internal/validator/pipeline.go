package validator

import (
	"errors"
	"fmt"

	"deedcheck/internal/domain"
	"deedcheck/internal/validator/deed"
)

// StageResult records what happened to one pipeline stage.
type StageResult struct {
	Stage  domain.ValidationStage `json:"stage"`
	Status domain.StageStatus     `json:"status"`
}

// Outcome is the tagged result of a pipeline run: exactly one of Record and
// Failure is set. Stages lists every stage in order, including skipped ones.
type Outcome struct {
	Record  *deed.EnrichedRecord `json:"record,omitempty"`
	Failure *deed.Failure        `json:"failure,omitempty"`
	Stages  []StageResult        `json:"stages"`
}

// OK reports whether the record was accepted.
func (o *Outcome) OK() bool { return o.Failure == nil && o.Record != nil }

// runState carries intermediate stage outputs. It never escapes a single run.
type runState struct {
	rec      *deed.Record
	ref      *deed.Reference
	signed   deed.Date
	recorded deed.Date
	written  int64
	match    deed.CountyMatch
	taxOwed  int64
	out      *deed.EnrichedRecord
}

type stage struct {
	name domain.ValidationStage
	run  func(p *Pipeline, st *runState) error
}

// stages run in this exact order; it decides which failure surfaces first.
var stages = []stage{
	{domain.StageStart, func(_ *Pipeline, st *runState) error {
		return deed.CheckRecord(st.rec)
	}},
	{domain.StageDateCheck, func(_ *Pipeline, st *runState) error {
		var err error
		st.signed, st.recorded, err = deed.CheckDateOrder(st.rec.SignedDate, st.rec.RecordedDate)
		return err
	}},
	{domain.StageAmountCheck, func(_ *Pipeline, st *runState) error {
		var err error
		st.written, err = deed.ReconcileAmount(st.rec.NumericAmount, st.rec.WrittenAmount)
		return err
	}},
	{domain.StageCountyNormalize, func(p *Pipeline, st *runState) error {
		var err error
		st.match, err = p.normalizer.Normalize(st.rec.CountyRaw, st.ref.Counties())
		return err
	}},
	{domain.StageTaxEnrich, func(_ *Pipeline, st *runState) error {
		owed, rate, err := deed.ComputeTax(st.match.Canonical, st.rec.NumericAmount, st.ref)
		if err != nil {
			return err
		}
		st.out = &deed.EnrichedRecord{
			Record:             *st.rec,
			SignedOn:           st.signed,
			RecordedOn:         st.recorded,
			WrittenAmountMinor: st.written,
			CountyCanonical:    st.match.Canonical,
			CountyMatchScore:   st.match.Score,
			TaxRate:            rate,
			TaxOwed:            owed,
		}
		return nil
	}},
}

// Pipeline validates and enriches deed records. It holds no per-record
// state and may be shared by concurrent callers.
type Pipeline struct {
	normalizer *deed.CountyNormalizer
}

// NewPipeline creates a pipeline over the given county normalizer.
func NewPipeline(normalizer *deed.CountyNormalizer) *Pipeline {
	return &Pipeline{normalizer: normalizer}
}

// Run executes every stage in order, stopping at the first failure. The
// returned error is non-nil only for configuration problems (missing
// reference data or normalizer), never for a rejected record.
func (p *Pipeline) Run(rec *deed.Record, ref *deed.Reference) (*Outcome, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: reference data not loaded", domain.ErrInvalidReferenceData)
	}
	if p.normalizer == nil {
		return nil, errors.New("validator.Pipeline: county normalizer not configured")
	}

	st := &runState{rec: rec, ref: ref}
	out := &Outcome{Stages: make([]StageResult, 0, len(stages))}
	for _, s := range stages {
		if out.Failure != nil {
			out.Stages = append(out.Stages, StageResult{Stage: s.name, Status: domain.StageStatusSkipped})
			continue
		}
		if err := s.run(p, st); err != nil {
			out.Failure = asFailure(s.name, err)
			out.Stages = append(out.Stages, StageResult{Stage: s.name, Status: domain.StageStatusFailed})
			continue
		}
		out.Stages = append(out.Stages, StageResult{Stage: s.name, Status: domain.StageStatusPassed})
	}
	if out.Failure == nil {
		out.Record = st.out
	}
	return out, nil
}

// RunJSON decodes an untrusted extractor payload and runs the pipeline.
// A payload that fails decoding fails at the start stage.
func (p *Pipeline) RunJSON(data []byte, ref *deed.Reference) (*Outcome, error) {
	rec, err := deed.DecodeRecord(data)
	if err != nil {
		if ref == nil {
			return nil, fmt.Errorf("%w: reference data not loaded", domain.ErrInvalidReferenceData)
		}
		out := &Outcome{Failure: asFailure(domain.StageStart, err)}
		for _, s := range stages {
			status := domain.StageStatusSkipped
			if s.name == domain.StageStart {
				status = domain.StageStatusFailed
			}
			out.Stages = append(out.Stages, StageResult{Stage: s.name, Status: status})
		}
		return out, nil
	}
	return p.Run(rec, ref)
}

// Validate returns the enriched record, or an error that is a
// *deed.Failure for rejected records and wraps domain.ErrInvalidReferenceData
// for configuration problems.
func (p *Pipeline) Validate(rec *deed.Record, ref *deed.Reference) (*deed.EnrichedRecord, error) {
	out, err := p.Run(rec, ref)
	if err != nil {
		return nil, err
	}
	if out.Failure != nil {
		return nil, out.Failure
	}
	return out.Record, nil
}

// asFailure normalizes any stage error to a *deed.Failure.
func asFailure(name domain.ValidationStage, err error) *deed.Failure {
	var f *deed.Failure
	if errors.As(err, &f) {
		return f
	}
	return &deed.Failure{
		Kind:    domain.FailureMalformedRecord,
		Stage:   name,
		Message: fmt.Sprintf("MalformedRecord: %v", err),
	}
}
