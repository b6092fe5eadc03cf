/*
commission.go - Fee-based revenue for placement engagements

PURPOSE:
  Placement engagements earn a one-time fee instead of hourly billing:
  either a flat amount, or a percentage of the placed subject's
  compensation. A third, internal variant books margin as a fixed accrual
  minus the compensation the organization absorbs.

ERROR POLICY:
  A negative fee value fails with InvalidCommissionError. An unrecognized
  fee type fails with UnsupportedCommissionTypeError - deliberately NO
  silent default here, unlike the period-type fallback in normalize.go,
  because defaulting a commission type materially misstates money.

SEE ALSO:
  - aggregate.go: Selects the placement path per engagement
  - placement/: Fee spec construction and presets
*/
package engine

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// COMMISSION MODEL
// =============================================================================

// Commission computes the placement fee in base currency. compInBase is
// the subject's compensation already expressed in the base currency (the
// percentage base).
func Commission(fee FeeSpec, compInBase Money, table RateTable) (Money, error) {
	if fee.Value.IsNegative() {
		return Money{}, &InvalidCommissionError{Fee: fee}
	}

	switch fee.Type {
	case FeeFlat:
		return table.Convert(Money{Amount: fee.Value, Currency: fee.Currency})
	case FeePercentage:
		return compInBase.Mul(fee.Value).Div(hundred), nil
	default:
		return Money{}, &UnsupportedCommissionTypeError{Type: fee.Type}
	}
}

// InternalMargin is the revenue/profit figure for an internal placement:
// the organization bills a fixed accrual and absorbs the compensation, so
// margin is simply the difference. Both amounts must already be in base
// currency. The caller selects this path explicitly via the engagement's
// PlacementClass; it is never inferred.
func InternalMargin(accrual, compensation Money) Money {
	return accrual.Sub(compensation)
}
