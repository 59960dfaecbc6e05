package service

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is used when a non-positive concurrency is configured.
const DefaultBatchConcurrency = 8

// BatchItem is the result for one record of a batch, in input position.
type BatchItem struct {
	Index  int
	Result *ValidationResult
	Err    error
}

// BatchValidator validates many records concurrently. Records are
// independent: one record's rejection or error never affects another.
type BatchValidator struct {
	svc         DeedService
	concurrency int
}

// NewBatchValidator creates a BatchValidator over svc.
func NewBatchValidator(svc DeedService, concurrency int) *BatchValidator {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &BatchValidator{svc: svc, concurrency: concurrency}
}

// Validate runs every payload and returns one item per payload in input
// order. The returned error is non-nil only if ctx is canceled.
func (b *BatchValidator) Validate(ctx context.Context, payloads []json.RawMessage) ([]BatchItem, error) {
	items := make([]BatchItem, len(payloads))
	for i := range items {
		items[i].Index = i
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, p := range payloads {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.svc.Validate(gctx, p)
			items[i].Result, items[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}
