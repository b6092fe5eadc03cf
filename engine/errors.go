/*
errors.go - Centralized error types for the attribution engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The service layer maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. Rate errors - Malformed compensation/billing figures
  2. Commission errors - Malformed placement fees
  3. Window errors - Malformed query intervals

FAILURE POLICY:
  The aggregator never catches and suppresses these: a single malformed
  record fails the whole aggregation call rather than silently producing
  a partial, misleading total. Financial correctness beats partial
  availability.

  The one documented non-error fallback lives in normalize.go: an
  unrecognized PeriodType is treated as annual (LPA) rather than
  rejected. See HourlyRate.

USAGE:
  Callers can branch on sentinels:

    if errors.Is(err, engine.ErrInvalidRate) {
        // 422, point at the offending record
    }

SEE ALSO:
  - normalize.go: Raises InvalidRateError
  - commission.go: Raises InvalidCommissionError, UnsupportedCommissionTypeError
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRate is returned when a compensation or billing figure is
	// malformed: negative amount, missing conversion rate, or a schedule
	// with zero working time.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrInvalidCommission is returned when a placement fee carries a
	// negative value.
	ErrInvalidCommission = errors.New("invalid commission")

	// ErrUnsupportedCommissionType is returned for an unrecognized fee type.
	// Unlike period types there is NO fallback here: defaulting a commission
	// type would materially misstate money.
	ErrUnsupportedCommissionType = errors.New("unsupported commission type")

	// ErrInvalidWindow is returned when a query window ends before it starts.
	ErrInvalidWindow = errors.New("invalid window: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the offending record's context
// =============================================================================

// InvalidRateError identifies the record whose figure could not be
// normalized to an hourly base rate.
type InvalidRateError struct {
	SubjectID  SubjectID
	Amount     Money
	PeriodType PeriodType
	Reason     string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate for subject %s: %s (amount %v %s, period %s)",
		e.SubjectID, e.Reason, e.Amount.Amount, e.Amount.Currency, e.PeriodType)
}

func (e *InvalidRateError) Unwrap() error { return ErrInvalidRate }

// InvalidCommissionError identifies a fee spec with a negative value.
type InvalidCommissionError struct {
	EngagementID EngagementID
	Fee          FeeSpec
}

func (e *InvalidCommissionError) Error() string {
	return fmt.Sprintf("invalid commission on engagement %s: negative value %v",
		e.EngagementID, e.Fee.Value)
}

func (e *InvalidCommissionError) Unwrap() error { return ErrInvalidCommission }

// UnsupportedCommissionTypeError identifies a fee spec whose type the
// engine does not recognize.
type UnsupportedCommissionTypeError struct {
	EngagementID EngagementID
	Type         FeeType
}

func (e *UnsupportedCommissionTypeError) Error() string {
	return fmt.Sprintf("unsupported commission type %q on engagement %s",
		e.Type, e.EngagementID)
}

func (e *UnsupportedCommissionTypeError) Unwrap() error { return ErrUnsupportedCommissionType }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an engine defect.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidCommission) ||
		errors.Is(err, ErrUnsupportedCommissionType) ||
		errors.Is(err, ErrInvalidWindow)
}
