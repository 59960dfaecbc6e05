package deed

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"deedcheck/internal/domain"
	"deedcheck/internal/port"
)

// RateLookup resolves the tax rate of a canonical county.
type RateLookup interface {
	Rate(county string) (decimal.Decimal, bool)
}

// TaxRates maps canonical county name to a decimal-fraction tax rate.
type TaxRates map[string]decimal.Decimal

// Rate implements RateLookup.
func (t TaxRates) Rate(county string) (decimal.Decimal, bool) {
	r, ok := t[county]
	return r, ok
}

// Reference is the county vocabulary and tax table. It is immutable after
// construction and safe for concurrent access.
type Reference struct {
	counties []string
	rates    TaxRates
}

var maxRate = decimal.NewFromInt(1)

// NewReference validates and copies the reference data. Counties without a
// rate are allowed; every rate must belong to a known county and lie in [0, 1).
func NewReference(counties []string, rates map[string]decimal.Decimal) (*Reference, error) {
	if len(counties) == 0 {
		return nil, fmt.Errorf("%w: county vocabulary is empty", domain.ErrInvalidReferenceData)
	}

	seen := make(map[string]string, len(counties))
	known := make(map[string]bool, len(counties))
	for i, name := range counties {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: county at position %d is blank", domain.ErrInvalidReferenceData, i)
		}
		norm := NormalizeCountyName(name)
		if prev, dup := seen[norm]; dup {
			return nil, fmt.Errorf("%w: counties %q and %q normalize to the same name %q",
				domain.ErrInvalidReferenceData, prev, name, norm)
		}
		seen[norm] = name
		known[name] = true
	}

	copied := make(TaxRates, len(rates))
	for name, rate := range rates {
		if !known[name] {
			return nil, fmt.Errorf("%w: tax rate given for unknown county %q", domain.ErrInvalidReferenceData, name)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(maxRate) {
			return nil, fmt.Errorf("%w: tax rate %s for %q must be a fraction in [0, 1)",
				domain.ErrInvalidReferenceData, rate, name)
		}
		copied[name] = rate
	}

	return &Reference{counties: slices.Clone(counties), rates: copied}, nil
}

// ReferenceFromEntries builds a Reference from loader entries, preserving order.
func ReferenceFromEntries(entries []port.CountyEntry) (*Reference, error) {
	counties := make([]string, 0, len(entries))
	rates := make(map[string]decimal.Decimal, len(entries))
	for i := range entries {
		e := &entries[i]
		counties = append(counties, e.Name)
		if e.TaxRate.Valid {
			rates[e.Name] = e.TaxRate.Decimal
		}
	}
	return NewReference(counties, rates)
}

// Counties returns a copy of the canonical vocabulary in reference order.
func (r *Reference) Counties() []string {
	return slices.Clone(r.counties)
}

// Len returns the vocabulary size.
func (r *Reference) Len() int { return len(r.counties) }

// Rate implements RateLookup.
func (r *Reference) Rate(county string) (decimal.Decimal, bool) {
	return r.rates.Rate(county)
}

// Entries returns the reference as loader entries, in vocabulary order.
func (r *Reference) Entries() []port.CountyEntry {
	out := make([]port.CountyEntry, 0, len(r.counties))
	for _, name := range r.counties {
		e := port.CountyEntry{Name: name}
		if rate, ok := r.rates[name]; ok {
			e.TaxRate = decimal.NewNullDecimal(rate)
		}
		out = append(out, e)
	}
	return out
}
