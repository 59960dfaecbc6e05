package deed

import (
	"fmt"
	"strings"

	"deedcheck/internal/domain"
)

// Failure is the terminal, typed rejection of a deed record. It names the
// violated rule, the offending fields and the concrete offending values.
type Failure struct {
	Kind          domain.FailureKind     `json:"kind"`
	Stage         domain.ValidationStage `json:"stage"`
	FieldPaths    []string               `json:"field_paths"`
	ExpectedValue string                 `json:"expected_value,omitempty"`
	ActualValue   string                 `json:"actual_value,omitempty"`
	Message       string                 `json:"message"`

	// Set for NoConfidentMatch only. The candidate is diagnostic and never accepted.
	BestCandidate string  `json:"best_candidate,omitempty"`
	BestScore     float64 `json:"best_score,omitempty"`
}

// Error returns the message, which always starts with the kind name.
func (f *Failure) Error() string {
	if strings.HasPrefix(f.Message, string(f.Kind)+":") {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func newFailure(kind domain.FailureKind, stage domain.ValidationStage, expected, actual, msg string, fields ...string) *Failure {
	return &Failure{
		Kind:          kind,
		Stage:         stage,
		FieldPaths:    fields,
		ExpectedValue: expected,
		ActualValue:   actual,
		Message:       msg,
	}
}
