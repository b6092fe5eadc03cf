/*
Package engine provides the core financial attribution engine.

PURPOSE:
  This package contains the types and algorithms that turn heterogeneous
  compensation and billing records (multiple currencies, multiple billing
  cadences) plus raw attendance entries into comparable revenue, cost, and
  profit figures, rolled up per subject, per cost object, per client, and
  for the whole portfolio.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A decimal amount with a currency
  - PeriodType: The cadence of a compensation/billing figure (Hourly, Monthly, LPA)
  - WorkSchedule: Per-subject working-time policy used for cadence conversion
  - CompensationRecord / BillingRecord: What a subject is paid / what the client is charged
  - Engagement: The subject<->cost-object<->client relationship being priced
  - AttendanceEntry: One day of reported time, split across cost objects

DESIGN PRINCIPLES:
  1. Purity: Every computation is a function of its explicit inputs
  2. Precision: Uses decimal.Decimal so roll-up sums are exact, not float-drifty
  3. Type Safety: Strong typing for IDs prevents mixing subjects and cost objects
  4. Whole-call failure: One malformed record fails the aggregation rather than
     producing a partial, misleading total

USAGE:
  comp := engine.NewMoney(1200000, engine.INR)
  rate, err := engine.HourlyRate(comp, engine.PeriodLPA, table, engine.DefaultSchedule())

SEE ALSO:
  - normalize.go: Cadence and currency normalization to per-hour base rates
  - attribution.go: Attendance -> worked hours
  - aggregate.go: Revenue/cost/profit roll-up
  - commission.go: Fee-based (placement) revenue path
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Decimal amount with a currency
// =============================================================================

// Currency is an ISO-ish currency code. The set is open: any code the
// caller's rate table knows about is valid.
type Currency string

const (
	INR Currency = "INR"
	USD Currency = "USD"
)

type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func NewMoney(value float64, currency Currency) Money {
	return Money{Amount: decimal.NewFromFloat(value), Currency: currency}
}

func NewMoneyFromInt(value int, currency Currency) Money {
	return Money{Amount: decimal.NewFromInt(int64(value)), Currency: currency}
}

// MustParseDecimal panics on a malformed literal. For fixtures and
// constants only; anything reading external data parses with
// decimal.NewFromString and handles the error.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid decimal literal %q: %v", s, err))
	}
	return d
}

func (m Money) Zero() Money                  { return Money{Amount: decimal.Zero, Currency: m.Currency} }
func (m Money) Add(b Money) Money            { return Money{Amount: m.Amount.Add(b.Amount), Currency: m.Currency} }
func (m Money) Sub(b Money) Money            { return Money{Amount: m.Amount.Sub(b.Amount), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money  { return Money{Amount: m.Amount.Mul(s), Currency: m.Currency} }
func (m Money) Div(s decimal.Decimal) Money  { return Money{Amount: m.Amount.Div(s), Currency: m.Currency} }
func (m Money) Neg() Money                   { return Money{Amount: m.Amount.Neg(), Currency: m.Currency} }
func (m Money) IsNegative() bool             { return m.Amount.IsNegative() }
func (m Money) IsZero() bool                 { return m.Amount.IsZero() }
func (m Money) IsPositive() bool             { return m.Amount.IsPositive() }
func (m Money) GreaterThan(b Money) bool     { return m.Amount.GreaterThan(b.Amount) }
func (m Money) LessThan(b Money) bool        { return m.Amount.LessThan(b.Amount) }
func (m Money) Equal(b Money) bool           { return m.Currency == b.Currency && m.Amount.Equal(b.Amount) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SubjectID string
type CostObjectID string
type ClientID string
type EngagementID string

// =============================================================================
// PERIOD TYPE - Cadence of a compensation/billing figure
// =============================================================================

type PeriodType string

const (
	PeriodHourly  PeriodType = "Hourly"
	PeriodMonthly PeriodType = "Monthly"
	// PeriodLPA is an annual figure ("lakhs per annum" in the Indian payroll
	// convention; the engine treats it simply as "per year").
	PeriodLPA PeriodType = "LPA"
)

// =============================================================================
// WORK SCHEDULE - Per-subject working-time policy
// =============================================================================

// WorkSchedule converts yearly/monthly figures into hourly ones. It is a
// caller-supplied policy: a weekdays-only subject uses {260, 8}, an
// all-days subject {365, 8}. The engine never hard-codes a single constant.
type WorkSchedule struct {
	WorkingDaysPerYear int
	HoursPerDay        int
}

// DefaultSchedule is the all-days schedule used when a subject has no
// specific policy on file.
func DefaultSchedule() WorkSchedule {
	return WorkSchedule{WorkingDaysPerYear: 365, HoursPerDay: 8}
}

// WeekdaySchedule is the weekdays-only variant.
func WeekdaySchedule() WorkSchedule {
	return WorkSchedule{WorkingDaysPerYear: 260, HoursPerDay: 8}
}

// HoursPerYear returns the schedule's total yearly hours as a decimal.
func (s WorkSchedule) HoursPerYear() decimal.Decimal {
	return decimal.NewFromInt(int64(s.WorkingDaysPerYear)).Mul(decimal.NewFromInt(int64(s.HoursPerDay)))
}

// IsZero reports whether the schedule has no working time at all.
// Such a schedule cannot be used for cadence conversion.
func (s WorkSchedule) IsZero() bool {
	return s.WorkingDaysPerYear == 0 || s.HoursPerDay == 0
}

// ScheduleSet maps subjects to their working-time policy.
type ScheduleSet map[SubjectID]WorkSchedule

// For returns the subject's schedule, falling back to the default.
func (ss ScheduleSet) For(id SubjectID) WorkSchedule {
	if ss != nil {
		if s, ok := ss[id]; ok {
			return s
		}
	}
	return DefaultSchedule()
}

// =============================================================================
// COMPENSATION AND BILLING RECORDS
// =============================================================================

// CompensationRecord is what a subject (employee/candidate) is paid.
type CompensationRecord struct {
	SubjectID  SubjectID
	Amount     Money
	PeriodType PeriodType
}

// BillingRecord is what the client is charged for a subject's time on a
// cost object.
type BillingRecord struct {
	CostObjectID CostObjectID
	ClientID     ClientID
	Amount       Money
	PeriodType   PeriodType
}

// =============================================================================
// PLACEMENT FEES
// =============================================================================

type FeeType string

const (
	FeeFlat       FeeType = "flat"
	FeePercentage FeeType = "percentage"
)

// FeeSpec describes a placement fee: either a flat amount in some currency,
// or a percentage of the placed subject's compensation.
type FeeSpec struct {
	Type  FeeType
	Value decimal.Decimal
	// Currency only applies to flat fees; percentage fees inherit the
	// currency of the compensation they are computed from.
	Currency Currency
}

// =============================================================================
// ENGAGEMENT - The unit the aggregator prices
// =============================================================================

type EngagementKind string

const (
	// KindTimesheet engagements earn revenue from attended hours times a
	// billing rate, and carry an hourly compensation cost.
	KindTimesheet EngagementKind = "timesheet"
	// KindPlacement engagements earn a one-time fee (or internal accrual
	// margin) instead; they have no timesheet cost path.
	KindPlacement EngagementKind = "placement"
)

// PlacementClass distinguishes the two placement revenue paths. The caller
// selects it explicitly; the engine never infers it.
type PlacementClass string

const (
	// PlacementExternal bills the client a fee per FeeSpec.
	PlacementExternal PlacementClass = "external"
	// PlacementInternal means the organization absorbs the compensation and
	// books a fixed accrual; profit is accrual minus compensation.
	PlacementInternal PlacementClass = "internal"
)

// Engagement ties a subject to a cost object and a client, with the records
// needed to price it. Exactly one of the two shapes is populated:
//
//	timesheet: Compensation + Billing
//	placement: Compensation + (Fee | AccrualAmount, per PlacementClass)
type Engagement struct {
	ID           EngagementID
	SubjectID    SubjectID
	CostObjectID CostObjectID
	ClientID     ClientID
	Kind         EngagementKind

	Compensation CompensationRecord
	Billing      BillingRecord

	// Placement-only fields.
	PlacementClass PlacementClass
	Fee            FeeSpec
	AccrualAmount  Money
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// Allocation is one slice of a day's reported time, attributed to a single
// cost object.
type Allocation struct {
	CostObjectID CostObjectID
	Hours        decimal.Decimal
	Note         string
}

// AttendanceEntry is one subject's reported time for one calendar day,
// split across cost objects. The allocation hours need not sum to any
// fixed daily total; they are the reported split as-is.
type AttendanceEntry struct {
	SubjectID   SubjectID
	Date        TimePoint
	Approved    bool
	Allocations []Allocation
}
