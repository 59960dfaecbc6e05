package domain

// FailureKind is the machine-readable reason a deed record was rejected.
type FailureKind string

const (
	FailureMalformedRecord          FailureKind = "MalformedRecord"
	FailureMalformedDate            FailureKind = "MalformedDate"
	FailureDateOrderViolation       FailureKind = "DateOrderViolation"
	FailureUnparseableWrittenAmount FailureKind = "UnparseableWrittenAmount"
	FailureAmountMismatch           FailureKind = "AmountMismatch"
	FailureNoConfidentMatch         FailureKind = "NoConfidentMatch"
	FailureUnknownTaxJurisdiction   FailureKind = "UnknownTaxJurisdiction"
)

// AllFailureKinds lists every failure kind in pipeline order.
var AllFailureKinds = []FailureKind{
	FailureMalformedRecord,
	FailureMalformedDate,
	FailureDateOrderViolation,
	FailureUnparseableWrittenAmount,
	FailureAmountMismatch,
	FailureNoConfidentMatch,
	FailureUnknownTaxJurisdiction,
}

// ValidationStage names a step of the deed validation pipeline.
type ValidationStage string

const (
	StageStart           ValidationStage = "start"
	StageDateCheck       ValidationStage = "date_check"
	StageAmountCheck     ValidationStage = "amount_check"
	StageCountyNormalize ValidationStage = "county_normalize"
	StageTaxEnrich       ValidationStage = "tax_enrich"
)

// PipelineStages is the fixed execution order of the pipeline.
var PipelineStages = []ValidationStage{
	StageStart,
	StageDateCheck,
	StageAmountCheck,
	StageCountyNormalize,
	StageTaxEnrich,
}

// StageStatus is the result of a single pipeline stage.
type StageStatus string

const (
	StageStatusPassed  StageStatus = "passed"
	StageStatusFailed  StageStatus = "failed"
	StageStatusSkipped StageStatus = "skipped"
)

// RunStatus is the overall status of a validation run.
type RunStatus string

const (
	RunStatusValid    RunStatus = "valid"
	RunStatusRejected RunStatus = "rejected"
)

// RunSource records how the structured record reached the pipeline.
type RunSource string

const (
	RunSourceRecord    RunSource = "record"
	RunSourceExtracted RunSource = "extracted"
)

// FieldValidationStatus represents the per-field validation state.
type FieldValidationStatus string

const (
	FieldStatusValid     FieldValidationStatus = "valid"
	FieldStatusInvalid   FieldValidationStatus = "invalid"
	FieldStatusUnsure    FieldValidationStatus = "unsure"
	FieldStatusUnchecked FieldValidationStatus = "unchecked"
)
