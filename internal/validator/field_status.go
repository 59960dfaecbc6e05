package validator

import (
	"deedcheck/internal/domain"
	"deedcheck/internal/validator/deed"
)

// FieldStatus represents the computed validation state for a single record field.
type FieldStatus struct {
	Status   domain.FieldValidationStatus `json:"status"`
	Messages []string                     `json:"messages"`
}

// fieldStages maps each record field to the stages that check it.
var fieldStages = map[string][]domain.ValidationStage{
	deed.FieldSignedDate:    {domain.StageDateCheck},
	deed.FieldRecordedDate:  {domain.StageDateCheck},
	deed.FieldNumericAmount: {domain.StageAmountCheck},
	deed.FieldWrittenAmount: {domain.StageAmountCheck},
	deed.FieldCountyRaw:     {domain.StageCountyNormalize, domain.StageTaxEnrich},
}

// ComputeFieldStatuses derives per-field statuses from a pipeline outcome and
// optional extractor confidence scores keyed by field path.
// Fields named by the failure are invalid; fields whose stages never ran
// are unchecked; passing fields with confidence <= 0.5 are unsure.
func ComputeFieldStatuses(out *Outcome, confidence map[string]float64) map[string]*FieldStatus {
	stageStatus := make(map[domain.ValidationStage]domain.StageStatus, len(out.Stages))
	for _, s := range out.Stages {
		stageStatus[s.Stage] = s.Status
	}

	failed := map[string]bool{}
	if out.Failure != nil {
		for _, fp := range out.Failure.FieldPaths {
			failed[fp] = true
		}
	}

	statuses := make(map[string]*FieldStatus, len(deed.RecordFields))
	for _, field := range deed.RecordFields {
		fs := &FieldStatus{Status: domain.FieldStatusValid, Messages: []string{}}
		switch {
		case failed[field]:
			fs.Status = domain.FieldStatusInvalid
			fs.Messages = append(fs.Messages, out.Failure.Message)
		case !allPassed(field, stageStatus):
			fs.Status = domain.FieldStatusUnchecked
		default:
			if c, ok := confidence[field]; ok && c <= 0.5 {
				fs.Status = domain.FieldStatusUnsure
			}
		}
		statuses[field] = fs
	}
	return statuses
}

func allPassed(field string, stageStatus map[domain.ValidationStage]domain.StageStatus) bool {
	for _, st := range fieldStages[field] {
		if stageStatus[st] != domain.StageStatusPassed {
			return false
		}
	}
	return true
}
