package deed

import (
	"fmt"

	"github.com/shopspring/decimal"

	"deedcheck/internal/domain"
)

// ComputeTax returns round_half_up(numericAmount * rate) in minor units.
// Amounts are non-negative, so rounding half away from zero is half-up.
func ComputeTax(canonicalCounty string, numericAmount int64, rates RateLookup) (taxOwed int64, rate decimal.Decimal, err error) {
	rate, ok := rates.Rate(canonicalCounty)
	if !ok {
		return 0, decimal.Zero, newFailure(domain.FailureUnknownTaxJurisdiction, domain.StageTaxEnrich,
			"county present in tax table", canonicalCounty,
			fmt.Sprintf("UnknownTaxJurisdiction: no tax rate configured for county %q", canonicalCounty),
			FieldCountyRaw)
	}
	owed := decimal.NewFromInt(numericAmount).Mul(rate).Round(0)
	return owed.IntPart(), rate, nil
}
