package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"deedcheck/internal/port"
)

// CountyRepo reads and replaces the county reference table.
type CountyRepo struct {
	db *sqlx.DB
}

// NewCountyRepo creates a new PostgreSQL-backed county reference source.
func NewCountyRepo(db *sqlx.DB) *CountyRepo {
	return &CountyRepo{db: db}
}

// Load implements port.ReferenceSource. Counties come back in insertion order.
func (r *CountyRepo) Load(ctx context.Context) ([]port.CountyEntry, error) {
	var entries []port.CountyEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT name, tax_rate FROM counties ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("countyRepo.Load: %w", err)
	}
	return entries, nil
}

// Replace swaps the whole table for entries in a single transaction.
func (r *CountyRepo) Replace(ctx context.Context, entries []port.CountyEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("countyRepo.Replace begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM counties`); err != nil {
		return fmt.Errorf("countyRepo.Replace delete: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO counties (name, tax_rate, position) VALUES ($1, $2, $3)`,
			e.Name, e.TaxRate, i); err != nil {
			return fmt.Errorf("countyRepo.Replace insert %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("countyRepo.Replace commit: %w", err)
	}
	return nil
}
