// Package app wires configuration into the running components shared by the
// server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"deedcheck/internal/config"
	"deedcheck/internal/extractor/providers"
	"deedcheck/internal/metrics"
	"deedcheck/internal/port"
	"deedcheck/internal/reference"
	"deedcheck/internal/repository/postgres"
	"deedcheck/internal/service"
	s3storage "deedcheck/internal/storage/s3"
	"deedcheck/internal/validator"
	"deedcheck/internal/validator/deed"
)

// Options selects the optional parts to build.
type Options struct {
	// WithExtractor builds the LLM extractor chain when an API key is configured.
	WithExtractor bool
	// Metrics is attached to the service when set.
	Metrics *metrics.Metrics
}

// App holds the wired components. Close releases the database connection.
type App struct {
	Reference  *deed.Reference
	Normalizer *deed.CountyNormalizer
	Pipeline   *validator.Pipeline
	Service    service.DeedService
	Batch      *service.BatchValidator
	DB         *sqlx.DB
}

// Build loads reference data and wires the validation service. Invalid
// reference data or normalizer settings are fatal.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{}

	needDB := cfg.DB.Enabled || cfg.Reference.Source == config.ReferenceSourcePostgres
	if needDB {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return nil, err
		}
		a.DB = db
	}

	deps := reference.Deps{}
	if a.DB != nil {
		deps.Counties = postgres.NewCountyRepo(a.DB)
	}
	if cfg.Reference.Source == config.ReferenceSourceS3 {
		storage, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		deps.Storage = storage
	}

	src, err := reference.NewSource(&cfg.Reference, deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	ref, err := reference.Load(ctx, src)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	a.Reference = ref
	log.Info("reference data loaded",
		zap.String("source", cfg.Reference.Source),
		zap.Int("counties", ref.Len()))

	normalizer, err := validator.NewScorerRegistry().NewNormalizer(cfg.Validation.Scorer, cfg.Validation.MatchThreshold)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Normalizer = normalizer
	a.Pipeline = validator.NewPipeline(normalizer)

	svcDeps := service.DeedServiceDeps{Metrics: opts.Metrics, Logger: log}
	if cfg.DB.Enabled {
		svcDeps.RunRepo = postgres.NewValidationRunRepo(a.DB)
	}
	switch {
	case opts.WithExtractor && cfg.Extractor.PrimaryConfig().APIKey == "":
		log.Warn("no extractor API key configured; extraction is disabled")
	case opts.WithExtractor:
		var ext port.DeedExtractor
		ext, err = providers.Build(&cfg.Extractor, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to build extractor: %w", err)
		}
		svcDeps.Extractor = ext
	}

	a.Service, err = service.NewDeedService(a.Pipeline, ref, svcDeps)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Batch = service.NewBatchValidator(a.Service, cfg.Batch.Concurrency)
	return a, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
