package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"deedcheck/internal/domain"
	"deedcheck/internal/port"
)

type validationRunRepo struct {
	db *sqlx.DB
}

// NewValidationRunRepo creates a new PostgreSQL-backed ValidationRunRepository.
func NewValidationRunRepo(db *sqlx.DB) port.ValidationRunRepository {
	return &validationRunRepo{db: db}
}

// runColumns maps NULL jsonb to the JSON literal null so it scans into json.RawMessage.
const runColumns = `id, source, status, failure_kind, document_id, input,
	COALESCE(enriched, 'null'::jsonb) AS enriched,
	COALESCE(failure, 'null'::jsonb) AS failure,
	model_used, created_at`

func (r *validationRunRepo) Create(ctx context.Context, run *domain.ValidationRun) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO validation_runs (id, source, status, failure_kind, document_id, input, enriched, failure, model_used)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		run.ID, run.Source, run.Status, run.FailureKind, run.DocumentID,
		run.Input, nullJSON(run.Enriched), nullJSON(run.Failure), run.ModelUsed,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("validationRunRepo.Create: %w", err)
	}
	return nil
}

func (r *validationRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error) {
	var run domain.ValidationRun
	err := r.db.GetContext(ctx, &run,
		`SELECT `+runColumns+` FROM validation_runs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("validationRunRepo.GetByID: %w", err)
	}
	normalizeRun(&run)
	return &run, nil
}

func (r *validationRunRepo) List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM validation_runs`); err != nil {
		return nil, 0, fmt.Errorf("validationRunRepo.List count: %w", err)
	}

	var runs []domain.ValidationRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT `+runColumns+` FROM validation_runs
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("validationRunRepo.List: %w", err)
	}
	for i := range runs {
		normalizeRun(&runs[i])
	}
	return runs, total, nil
}

// nullJSON stores an absent document as SQL NULL.
func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}

func normalizeRun(run *domain.ValidationRun) {
	if string(run.Enriched) == "null" {
		run.Enriched = nil
	}
	if string(run.Failure) == "null" {
		run.Failure = nil
	}
}
