/*
normalize.go - Rate normalization: any cadence, any currency -> base hourly

PURPOSE:
  Compensation and billing figures arrive in whatever shape they were
  entered: 1200000 INR per annum, 100 USD per hour, 80000 INR per month.
  None of them are comparable until they share a currency and a cadence.
  HourlyRate is the single place that comparison happens.

CONVERSION RULES:
  Hourly   -> unchanged
  Monthly  -> amount * 12 / (workingDaysPerYear * hoursPerDay)
  LPA      -> amount / (workingDaysPerYear * hoursPerDay)
  unknown  -> treated as LPA (documented fallback, see below)

THE LPA FALLBACK:
  Records with an unrecognized period type are annualized rather than
  rejected. This is a deliberate policy choice: upstream data entry has
  historically produced stray period labels, and rejecting them would make
  whole clients un-reportable over one mislabeled row. Callers relying on
  unknown types get annual semantics. Commission types get the opposite
  treatment (hard error) because a wrong fee type misstates money directly.

SEE ALSO:
  - rates.go: Currency conversion
  - types.go: WorkSchedule
*/
package engine

import (
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// =============================================================================
// RATE NORMALIZER
// =============================================================================

// HourlyRate converts a compensation/billing figure into a per-hour rate in
// the table's base currency. The schedule is the subject's working-time
// policy (weekdays-only vs all-days); pass DefaultSchedule() when none is
// on file.
//
// Errors: negative amount, missing conversion rate, or a schedule with no
// working time all raise InvalidRateError.
func HourlyRate(amount Money, period PeriodType, table RateTable, schedule WorkSchedule) (Money, error) {
	if amount.IsNegative() {
		return Money{}, &InvalidRateError{
			Amount:     amount,
			PeriodType: period,
			Reason:     "negative amount",
		}
	}

	base, err := table.Convert(amount)
	if err != nil {
		return Money{}, err
	}

	if period == PeriodHourly {
		return base, nil
	}

	// Monthly and annual figures divide by yearly hours; a zero-duration
	// schedule would divide by zero.
	if schedule.IsZero() {
		return Money{}, &InvalidRateError{
			Amount:     amount,
			PeriodType: period,
			Reason:     "schedule has zero working time",
		}
	}
	yearlyHours := schedule.HoursPerYear()

	switch period {
	case PeriodMonthly:
		return base.Mul(twelve).Div(yearlyHours), nil
	default:
		// PeriodLPA and any unrecognized cadence: annual semantics.
		return base.Div(yearlyHours), nil
	}
}

// CompensationHourlyRate normalizes a compensation record, tagging any
// error with the subject it belongs to.
func CompensationHourlyRate(rec CompensationRecord, table RateTable, schedule WorkSchedule) (Money, error) {
	rate, err := HourlyRate(rec.Amount, rec.PeriodType, table, schedule)
	if err != nil {
		tagSubject(err, rec.SubjectID)
		return Money{}, err
	}
	return rate, nil
}

// BillingHourlyRate normalizes a billing record. Billing errors carry no
// subject of their own; the aggregator tags them with the engagement's.
func BillingHourlyRate(rec BillingRecord, table RateTable, schedule WorkSchedule) (Money, error) {
	return HourlyRate(rec.Amount, rec.PeriodType, table, schedule)
}

func tagSubject(err error, id SubjectID) {
	if re, ok := err.(*InvalidRateError); ok && re.SubjectID == "" {
		re.SubjectID = id
	}
}
