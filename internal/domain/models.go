package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ValidationRun is the audit record of one pipeline invocation.
// Enriched holds the enriched record JSON on success, Failure the failure JSON otherwise.
type ValidationRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Source      RunSource       `db:"source" json:"source"`
	Status      RunStatus       `db:"status" json:"status"`
	FailureKind *FailureKind    `db:"failure_kind" json:"failure_kind,omitempty"`
	DocumentID  string          `db:"document_id" json:"document_id,omitempty"`
	Input       json.RawMessage `db:"input" json:"input"`
	Enriched    json.RawMessage `db:"enriched" json:"enriched,omitempty"`
	Failure     json.RawMessage `db:"failure" json:"failure,omitempty"`
	ModelUsed   string          `db:"model_used" json:"model_used,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
