package deed

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"deedcheck/internal/domain"
)

// Field paths of the structured deed record.
const (
	FieldSignedDate    = "signed_date"
	FieldRecordedDate  = "recorded_date"
	FieldNumericAmount = "numeric_amount"
	FieldWrittenAmount = "written_amount"
	FieldCountyRaw     = "county_raw"
)

// RecordFields lists the required record fields in pipeline order.
var RecordFields = []string{
	FieldSignedDate,
	FieldRecordedDate,
	FieldNumericAmount,
	FieldWrittenAmount,
	FieldCountyRaw,
}

// Record is the structured deed record produced by an extractor.
// NumericAmount is in minor currency units (cents).
type Record struct {
	SignedDate    string `json:"signed_date"`
	RecordedDate  string `json:"recorded_date"`
	NumericAmount int64  `json:"numeric_amount" validate:"min=0"`
	WrittenAmount string `json:"written_amount"`
	CountyRaw     string `json:"county_raw"`

	// Context carried through untouched; never validated.
	DocumentID string `json:"doc_id,omitempty"`
	State      string `json:"state,omitempty"`
	Grantor    string `json:"grantor,omitempty"`
	Grantee    string `json:"grantee,omitempty"`
	APN        string `json:"apn,omitempty"`
	Status     string `json:"status,omitempty"`
}

// EnrichedRecord is a record that passed every pipeline stage.
type EnrichedRecord struct {
	Record
	SignedOn           Date            `json:"signed_on"`
	RecordedOn         Date            `json:"recorded_on"`
	WrittenAmountMinor int64           `json:"written_amount_minor"`
	CountyCanonical    string          `json:"county_canonical"`
	CountyMatchScore   float64         `json:"county_match_score"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	TaxOwed            int64           `json:"tax_owed"`
}

// wireRecord distinguishes missing fields (nil) from zero values.
type wireRecord struct {
	SignedDate    *string `json:"signed_date" validate:"required"`
	RecordedDate  *string `json:"recorded_date" validate:"required"`
	NumericAmount *int64  `json:"numeric_amount" validate:"required,min=0"`
	WrittenAmount *string `json:"written_amount" validate:"required"`
	CountyRaw     *string `json:"county_raw" validate:"required"`

	DocumentID string `json:"doc_id"`
	State      string `json:"state"`
	Grantor    string `json:"grantor"`
	Grantee    string `json:"grantee"`
	APN        string `json:"apn"`
	Status     string `json:"status"`
}

var recordValidate = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeRecord strictly decodes an untrusted extractor payload. Missing,
// null or ill-typed required fields fail with MalformedRecord.
func DecodeRecord(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, decodeFailure(err)
	}
	if err := recordValidate.Struct(&w); err != nil {
		return nil, shapeFailure(err)
	}
	return &Record{
		SignedDate:    *w.SignedDate,
		RecordedDate:  *w.RecordedDate,
		NumericAmount: *w.NumericAmount,
		WrittenAmount: *w.WrittenAmount,
		CountyRaw:     *w.CountyRaw,
		DocumentID:    w.DocumentID,
		State:         w.State,
		Grantor:       w.Grantor,
		Grantee:       w.Grantee,
		APN:           w.APN,
		Status:        w.Status,
	}, nil
}

// CheckRecord validates the shape of a record built in-process.
func CheckRecord(rec *Record) error {
	if rec == nil {
		return newFailure(domain.FailureMalformedRecord, domain.StageStart,
			"a structured deed record", "nil",
			"MalformedRecord: no record was supplied")
	}
	if err := recordValidate.Struct(rec); err != nil {
		return shapeFailure(err)
	}
	return nil
}

func decodeFailure(err error) *Failure {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return newFailure(domain.FailureMalformedRecord, domain.StageStart,
				"JSON object", typeErr.Value,
				fmt.Sprintf("MalformedRecord: record must be a JSON object, got %s", typeErr.Value))
		}
		return newFailure(domain.FailureMalformedRecord, domain.StageStart,
			typeErr.Type.String(), typeErr.Value,
			fmt.Sprintf("MalformedRecord: field %s has wrong type (expected %s, got %s)", typeErr.Field, typeErr.Type, typeErr.Value),
			typeErr.Field)
	}
	return newFailure(domain.FailureMalformedRecord, domain.StageStart,
		"valid JSON", err.Error(),
		fmt.Sprintf("MalformedRecord: record is not valid JSON: %v", err))
}

func shapeFailure(err error) *Failure {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newFailure(domain.FailureMalformedRecord, domain.StageStart, "", "",
			fmt.Sprintf("MalformedRecord: %v", err))
	}

	fields := make([]string, 0, len(verrs))
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("required field %s is missing", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("field %s must be >= %s (got %v)", fe.Field(), fe.Param(), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("field %s failed %q check", fe.Field(), fe.Tag()))
		}
	}

	f := newFailure(domain.FailureMalformedRecord, domain.StageStart, "", "",
		"MalformedRecord: "+strings.Join(parts, "; "), fields...)
	if len(verrs) == 1 && verrs[0].Tag() == "min" {
		f.ExpectedValue = ">= " + verrs[0].Param()
		f.ActualValue = fmt.Sprintf("%v", verrs[0].Value())
	}
	return f
}
