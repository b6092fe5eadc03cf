/*
attribution.go - Attendance entries -> worked-hour totals

PURPOSE:
  Attendance arrives as day-granular entries, each splitting a subject's
  reported time across one or more cost objects. Attribution filters those
  entries down to a queried window and sums the hours that landed on a
  particular cost object.

RULES:
  - Only approved entries count. Draft/rejected time never earns revenue.
  - The window is inclusive on both ends.
  - No matching entries is a valid zero-hours state, not an error: a
    subject with no attendance simply produced no revenue.

PURITY:
  HoursFor is a pure function of its arguments. It never mutates the entry
  slice, never consults the wall clock, and never caches. Two calls with
  identical arguments return identical totals.

SEE ALSO:
  - aggregate.go: Multiplies these hours by normalized rates
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TIME ATTRIBUTION
// =============================================================================

// HoursFor returns the total approved hours the subject reported against
// the cost object within the window.
func HoursFor(subject SubjectID, costObject CostObjectID, entries []AttendanceEntry, window Window) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.SubjectID != subject || !e.Approved || !window.Contains(e.Date) {
			continue
		}
		for _, a := range e.Allocations {
			if a.CostObjectID == costObject {
				total = total.Add(a.Hours)
			}
		}
	}
	return total
}

// TotalHoursFor returns the subject's total approved hours within the
// window across all cost objects. Same filter as HoursFor, without the
// cost-object narrowing.
func TotalHoursFor(subject SubjectID, entries []AttendanceEntry, window Window) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.SubjectID != subject || !e.Approved || !window.Contains(e.Date) {
			continue
		}
		for _, a := range e.Allocations {
			total = total.Add(a.Hours)
		}
	}
	return total
}

// hoursKey identifies one subject's time on one cost object.
type hoursKey struct {
	Subject    SubjectID
	CostObject CostObjectID
}

// hoursIndex pre-buckets approved in-window hours by subject and cost
// object so the aggregator walks the entry list once, not once per
// engagement. Lookup semantics are identical to HoursFor.
type hoursIndex map[hoursKey]decimal.Decimal

func indexHours(entries []AttendanceEntry, window Window) hoursIndex {
	idx := make(hoursIndex)
	for _, e := range entries {
		if !e.Approved || !window.Contains(e.Date) {
			continue
		}
		for _, a := range e.Allocations {
			k := hoursKey{Subject: e.SubjectID, CostObject: a.CostObjectID}
			idx[k] = idx[k].Add(a.Hours)
		}
	}
	return idx
}

func (idx hoursIndex) hours(subject SubjectID, costObject CostObjectID) decimal.Decimal {
	return idx[hoursKey{Subject: subject, CostObject: costObject}]
}
