package port

import (
	"context"

	"github.com/google/uuid"

	"deedcheck/internal/domain"
)

// ValidationRunRepository persists the audit trail of pipeline runs.
type ValidationRunRepository interface {
	Create(ctx context.Context, run *domain.ValidationRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ValidationRun, int, error)
}
