package validator_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/domain"
	"deedcheck/internal/validator"
	"deedcheck/internal/validator/deed"
)

func testReference(t *testing.T) *deed.Reference {
	t.Helper()
	ref, err := deed.NewReference(
		[]string{"Los Angeles", "Orange", "Ventura", "San Benito", "San Mateo"},
		map[string]decimal.Decimal{
			"Los Angeles": decimal.RequireFromString("0.0055"),
			"Orange":      decimal.RequireFromString("0.011"),
			"Ventura":     decimal.RequireFromString("0.011"),
			"San Mateo":   decimal.RequireFromString("0.011"),
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

func baseRecord() *deed.Record {
	return &deed.Record{
		SignedDate:    "2024-01-10",
		RecordedDate:  "2024-01-15",
		NumericAmount: 100000000,
		WrittenAmount: "One Million Dollars",
		CountyRaw:     "Los Angeles",
		DocumentID:    "DOC-1",
	}
}

func stageStatuses(out *validator.Outcome) []domain.StageStatus {
	statuses := make([]domain.StageStatus, 0, len(out.Stages))
	for _, s := range out.Stages {
		statuses = append(statuses, s.Status)
	}
	return statuses
}

func assertStageOrder(t *testing.T, out *validator.Outcome) {
	t.Helper()
	require.Len(t, out.Stages, len(domain.PipelineStages))
	for i, s := range out.Stages {
		assert.Equal(t, domain.PipelineStages[i], s.Stage)
	}
}

func TestPipeline_DateOrderViolation(t *testing.T) {
	rec := baseRecord()
	rec.SignedDate, rec.RecordedDate = "2024-01-15", "2024-01-10"
	// Later stages would also fail; the first failure wins.
	rec.WrittenAmount = "Two Dollars"

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)

	assert.False(t, out.OK())
	assert.Nil(t, out.Record)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureDateOrderViolation, out.Failure.Kind)
	assertStageOrder(t, out)
	assert.Equal(t, []domain.StageStatus{
		domain.StageStatusPassed,
		domain.StageStatusFailed,
		domain.StageStatusSkipped,
		domain.StageStatusSkipped,
		domain.StageStatusSkipped,
	}, stageStatuses(out))
}

func TestPipeline_AmountMismatch(t *testing.T) {
	rec := baseRecord()
	rec.NumericAmount = 125000000
	rec.WrittenAmount = "One Million Two Hundred Thousand"

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureAmountMismatch, out.Failure.Kind)
	assert.Equal(t, domain.StageStatusFailed, out.Stages[2].Status)
	assert.Equal(t, domain.StageStatusSkipped, out.Stages[3].Status)
}

func TestPipeline_CountyMisspellingAccepted(t *testing.T) {
	rec := baseRecord()
	rec.CountyRaw = "Los Angelas Co."

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)
	require.True(t, out.OK(), "%+v", out.Failure)
	assert.Equal(t, "Los Angeles", out.Record.CountyCanonical)
	assert.InDelta(t, 90.909, out.Record.CountyMatchScore, 0.01)
	assert.Equal(t, "Los Angelas Co.", out.Record.CountyRaw)
}

func TestPipeline_TaxEnrichment(t *testing.T) {
	out, err := testPipeline(t).Run(baseRecord(), testReference(t))
	require.NoError(t, err)
	require.True(t, out.OK())

	got := out.Record
	assert.Equal(t, int64(550000), got.TaxOwed)
	assert.True(t, got.TaxRate.Equal(decimal.RequireFromString("0.0055")))
	assert.Equal(t, int64(100000000), got.WrittenAmountMinor)
	assert.Equal(t, "2024-01-10", got.SignedOn.String())
	assert.Equal(t, "2024-01-15", got.RecordedOn.String())
	assert.Equal(t, "DOC-1", got.DocumentID)
	for _, s := range out.Stages {
		assert.Equal(t, domain.StageStatusPassed, s.Status)
	}
}

func TestPipeline_NoConfidentMatch(t *testing.T) {
	rec := baseRecord()
	rec.CountyRaw = "Oranje"

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureNoConfidentMatch, out.Failure.Kind)
	assert.Equal(t, "Orange", out.Failure.BestCandidate)
	assert.Nil(t, out.Record)
}

func TestPipeline_UnknownTaxJurisdiction(t *testing.T) {
	rec := baseRecord()
	rec.CountyRaw = "San Benito County"

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureUnknownTaxJurisdiction, out.Failure.Kind)
	assert.Equal(t, domain.StageStatusPassed, out.Stages[3].Status)
	assert.Equal(t, domain.StageStatusFailed, out.Stages[4].Status)
}

func TestPipeline_EmptyStringDateFailsAtDateCheck(t *testing.T) {
	rec := baseRecord()
	rec.SignedDate = ""

	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureMalformedDate, out.Failure.Kind)
}

func TestPipeline_NilReference(t *testing.T) {
	_, err := testPipeline(t).Run(baseRecord(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidReferenceData)

	_, err = testPipeline(t).RunJSON([]byte(`{}`), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidReferenceData)
}

func TestPipeline_NilNormalizer(t *testing.T) {
	_, err := validator.NewPipeline(nil).Run(baseRecord(), testReference(t))
	assert.Error(t, err)
}

func TestPipeline_NilRecord(t *testing.T) {
	out, err := testPipeline(t).Run(nil, testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureMalformedRecord, out.Failure.Kind)
	assert.Equal(t, domain.StageStatusFailed, out.Stages[0].Status)
}

func TestPipeline_RunJSON(t *testing.T) {
	data, err := json.Marshal(baseRecord())
	require.NoError(t, err)

	out, err := testPipeline(t).RunJSON(data, testReference(t))
	require.NoError(t, err)
	require.True(t, out.OK())
	assert.Equal(t, int64(550000), out.Record.TaxOwed)
}

func TestPipeline_RunJSONMalformed(t *testing.T) {
	out, err := testPipeline(t).RunJSON([]byte(`{"signed_date":"2024-01-10"}`), testReference(t))
	require.NoError(t, err)
	require.NotNil(t, out.Failure)
	assert.Equal(t, domain.FailureMalformedRecord, out.Failure.Kind)
	assertStageOrder(t, out)
	assert.Equal(t, []domain.StageStatus{
		domain.StageStatusFailed,
		domain.StageStatusSkipped,
		domain.StageStatusSkipped,
		domain.StageStatusSkipped,
		domain.StageStatusSkipped,
	}, stageStatuses(out))
}

func TestPipeline_Validate(t *testing.T) {
	p := testPipeline(t)
	ref := testReference(t)

	enriched, err := p.Validate(baseRecord(), ref)
	require.NoError(t, err)
	assert.Equal(t, "Los Angeles", enriched.CountyCanonical)

	rec := baseRecord()
	rec.WrittenAmount = "Nine Dollars"
	_, err = p.Validate(rec, ref)
	var f *deed.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, domain.FailureAmountMismatch, f.Kind)
}

func TestPipeline_ConcurrentRunsAreIndependent(t *testing.T) {
	p := testPipeline(t)
	ref := testReference(t)

	var wg sync.WaitGroup
	results := make([]*validator.Outcome, 40)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := baseRecord()
			if i%2 == 1 {
				rec.CountyRaw = "Oranje"
			}
			out, err := p.Run(rec, ref)
			assert.NoError(t, err)
			results[i] = out
		}()
	}
	wg.Wait()

	for i, out := range results {
		require.NotNil(t, out)
		assert.Equal(t, i%2 == 0, out.OK(), "run %d", i)
	}
}

func TestOutcome_JSONShape(t *testing.T) {
	rec := baseRecord()
	rec.WrittenAmount = "Nine Dollars"
	out, err := testPipeline(t).Run(rec, testReference(t))
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "record")
	assert.Contains(t, decoded, "failure")
	assert.Len(t, decoded["stages"], 5)
}
