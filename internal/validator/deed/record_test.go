package deed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deedcheck/internal/domain"
	"deedcheck/internal/validator/deed"
)

const validRecordJSON = `{
	"doc_id": "DOC-1",
	"state": "CA",
	"signed_date": "2024-01-10",
	"recorded_date": "2024-01-15",
	"numeric_amount": 125000000,
	"written_amount": "One Million Two Hundred Fifty Thousand Dollars",
	"county_raw": "Los Angelas Co.",
	"grantor": "A. Seller",
	"grantee": "B. Buyer",
	"apn": "1234-567-890",
	"status": "recorded"
}`

func TestDecodeRecord_Valid(t *testing.T) {
	rec, err := deed.DecodeRecord([]byte(validRecordJSON))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-10", rec.SignedDate)
	assert.Equal(t, "2024-01-15", rec.RecordedDate)
	assert.Equal(t, int64(125000000), rec.NumericAmount)
	assert.Equal(t, "Los Angelas Co.", rec.CountyRaw)
	assert.Equal(t, "DOC-1", rec.DocumentID)
	assert.Equal(t, "CA", rec.State)
	assert.Equal(t, "1234-567-890", rec.APN)
}

func TestDecodeRecord_OptionalFieldsMayBeAbsent(t *testing.T) {
	rec, err := deed.DecodeRecord([]byte(`{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
		"numeric_amount":0,"written_amount":"Zero","county_raw":"Orange","unknown_extra":true}`))
	require.NoError(t, err)
	assert.Empty(t, rec.DocumentID)
	assert.Zero(t, rec.NumericAmount)
}

func TestDecodeRecord_MissingField(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
		"numeric_amount":100,"written_amount":"One Dollar"}`))
	f := requireFailure(t, err, domain.FailureMalformedRecord)

	assert.Equal(t, domain.StageStart, f.Stage)
	assert.Equal(t, []string{deed.FieldCountyRaw}, f.FieldPaths)
	assert.Contains(t, f.Message, "county_raw")
}

func TestDecodeRecord_NullFieldIsMissing(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":null,"recorded_date":"2024-01-15",
		"numeric_amount":null,"written_amount":"One Dollar","county_raw":"Orange"}`))
	f := requireFailure(t, err, domain.FailureMalformedRecord)
	assert.ElementsMatch(t, []string{deed.FieldSignedDate, deed.FieldNumericAmount}, f.FieldPaths)
}

func TestDecodeRecord_WrongType(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
		"numeric_amount":"1,250,000","written_amount":"One Dollar","county_raw":"Orange"}`))
	f := requireFailure(t, err, domain.FailureMalformedRecord)
	assert.Equal(t, []string{deed.FieldNumericAmount}, f.FieldPaths)
	assert.Equal(t, "string", f.ActualValue)
}

func TestDecodeRecord_FractionalAmount(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
		"numeric_amount":100.5,"written_amount":"One Dollar","county_raw":"Orange"}`))
	f := requireFailure(t, err, domain.FailureMalformedRecord)
	assert.Equal(t, []string{deed.FieldNumericAmount}, f.FieldPaths)
}

func TestDecodeRecord_NegativeAmount(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":"2024-01-10","recorded_date":"2024-01-15",
		"numeric_amount":-5,"written_amount":"One Dollar","county_raw":"Orange"}`))
	f := requireFailure(t, err, domain.FailureMalformedRecord)
	assert.Equal(t, []string{deed.FieldNumericAmount}, f.FieldPaths)
	assert.Equal(t, ">= 0", f.ExpectedValue)
	assert.Equal(t, "-5", f.ActualValue)
}

func TestDecodeRecord_NotAnObject(t *testing.T) {
	for _, in := range []string{`[]`, `"text"`, `42`} {
		_, err := deed.DecodeRecord([]byte(in))
		f := requireFailure(t, err, domain.FailureMalformedRecord)
		assert.Empty(t, f.FieldPaths, in)
	}
}

func TestDecodeRecord_InvalidJSON(t *testing.T) {
	_, err := deed.DecodeRecord([]byte(`{"signed_date":`))
	requireFailure(t, err, domain.FailureMalformedRecord)
}

func TestCheckRecord(t *testing.T) {
	assert.NoError(t, deed.CheckRecord(&deed.Record{NumericAmount: 5}))

	err := deed.CheckRecord(&deed.Record{NumericAmount: -1})
	requireFailure(t, err, domain.FailureMalformedRecord)

	err = deed.CheckRecord(nil)
	requireFailure(t, err, domain.FailureMalformedRecord)
}
