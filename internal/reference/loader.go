package reference

import (
	"context"
	"fmt"

	"deedcheck/internal/config"
	"deedcheck/internal/port"
	"deedcheck/internal/validator/deed"
)

// Deps supplies the backends that some sources need. Only the one matching
// the configured source has to be set.
type Deps struct {
	Counties port.ReferenceSource // postgres
	Storage  port.ObjectStorage   // s3
}

// NewSource selects the ReferenceSource named by cfg.Source.
func NewSource(cfg *config.ReferenceConfig, deps Deps) (port.ReferenceSource, error) {
	switch cfg.Source {
	case config.ReferenceSourceFile:
		return NewFileSource(cfg.Path), nil
	case config.ReferenceSourceXLSX:
		return NewXLSXSource(cfg.Path, cfg.Sheet), nil
	case config.ReferenceSourcePostgres:
		if deps.Counties == nil {
			return nil, fmt.Errorf("reference source postgres requires a database connection")
		}
		return deps.Counties, nil
	case config.ReferenceSourceS3:
		if deps.Storage == nil {
			return nil, fmt.Errorf("reference source s3 requires object storage")
		}
		return NewObjectSource(deps.Storage, cfg.Bucket, cfg.Key, cfg.Sheet), nil
	default:
		return nil, fmt.Errorf("unknown reference source %q", cfg.Source)
	}
}

// Load reads entries from src and validates them into an immutable Reference.
func Load(ctx context.Context, src port.ReferenceSource) (*deed.Reference, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return deed.ReferenceFromEntries(entries)
}
