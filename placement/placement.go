/*
Package placement implements fee-based (non-timesheet) engagements.

PURPOSE:
  Demonstrates the second revenue path through the attribution engine.
  Where timesheet engagements earn hours x rate, placements earn a
  one-time fee: flat, a percentage of the placed subject's compensation,
  or - for internal placements - a fixed accrual minus the absorbed
  compensation.

INTAKE POLICY:
  Fee validity is checked at construction AND again inside the engine.
  Catching a negative or unrecognized fee here gives the caller an error
  at data-entry time instead of at the first month-end aggregation.

SEE ALSO:
  - engine/commission.go: The pricing itself
  - timesheet/: The hours-based counterpart
*/
package placement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// FEE PRESETS
// =============================================================================

// StandardFee is the house percentage fee: one month of annual
// compensation, expressed as 100/12 rounded to two places.
func StandardFee() engine.FeeSpec {
	return engine.FeeSpec{Type: engine.FeePercentage, Value: decimal.NewFromFloat(8.33)}
}

// PercentageFee builds a percentage-of-compensation fee.
func PercentageFee(value float64) engine.FeeSpec {
	return engine.FeeSpec{Type: engine.FeePercentage, Value: decimal.NewFromFloat(value)}
}

// FlatFee builds a fixed-amount fee in the given currency.
func FlatFee(value float64, currency engine.Currency) engine.FeeSpec {
	return engine.FeeSpec{Type: engine.FeeFlat, Value: decimal.NewFromFloat(value), Currency: currency}
}

// =============================================================================
// INTAKE
// =============================================================================

var errMissingParty = errors.New("placement requires subject, cost object, and client")

func validateParties(subject engine.SubjectID, costObject engine.CostObjectID, client engine.ClientID) error {
	if subject == "" || costObject == "" || client == "" {
		return errMissingParty
	}
	return nil
}

// NewExternal builds a client-billed placement engagement. The fee is
// validated eagerly so bad data fails at entry, not at aggregation.
func NewExternal(id engine.EngagementID, subject engine.SubjectID, costObject engine.CostObjectID, client engine.ClientID, comp engine.CompensationRecord, fee engine.FeeSpec) (engine.Engagement, error) {
	if err := validateParties(subject, costObject, client); err != nil {
		return engine.Engagement{}, err
	}
	if fee.Value.IsNegative() {
		return engine.Engagement{}, &engine.InvalidCommissionError{EngagementID: id, Fee: fee}
	}
	switch fee.Type {
	case engine.FeeFlat, engine.FeePercentage:
	default:
		return engine.Engagement{}, &engine.UnsupportedCommissionTypeError{EngagementID: id, Type: fee.Type}
	}

	return engine.Engagement{
		ID:             id,
		SubjectID:      subject,
		CostObjectID:   costObject,
		ClientID:       client,
		Kind:           engine.KindPlacement,
		PlacementClass: engine.PlacementExternal,
		Compensation:   comp,
		Fee:            fee,
	}, nil
}

// NewInternal builds an organization-absorbed placement: a fixed accrual
// is billed and the compensation is carried internally, so margin is
// accrual minus compensation. The internal classification is explicit
// here; nothing downstream infers it.
func NewInternal(id engine.EngagementID, subject engine.SubjectID, costObject engine.CostObjectID, client engine.ClientID, comp engine.CompensationRecord, accrual engine.Money) (engine.Engagement, error) {
	if err := validateParties(subject, costObject, client); err != nil {
		return engine.Engagement{}, err
	}
	if accrual.IsNegative() {
		return engine.Engagement{}, fmt.Errorf("negative accrual %v for engagement %s", accrual.Amount, id)
	}

	return engine.Engagement{
		ID:             id,
		SubjectID:      subject,
		CostObjectID:   costObject,
		ClientID:       client,
		Kind:           engine.KindPlacement,
		PlacementClass: engine.PlacementInternal,
		Compensation:   comp,
		AccrualAmount:  accrual,
	}, nil
}
