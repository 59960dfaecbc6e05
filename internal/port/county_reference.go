package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// CountyEntry is one canonical county with its optional closing tax rate.
type CountyEntry struct {
	Name    string              `db:"name"`
	TaxRate decimal.NullDecimal `db:"tax_rate"`
}

// ReferenceSource loads the county vocabulary and tax table, in vocabulary order.
type ReferenceSource interface {
	Load(ctx context.Context) ([]CountyEntry, error)
}
