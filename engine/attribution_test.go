package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(d int) engine.TimePoint {
	return engine.NewTimePoint(2025, time.March, d)
}

func march2025() engine.Window {
	return engine.Window{
		Start: engine.NewTimePoint(2025, time.March, 1),
		End:   engine.NewTimePoint(2025, time.March, 31),
	}
}

func entry(subject string, d engine.TimePoint, approved bool, allocs ...engine.Allocation) engine.AttendanceEntry {
	return engine.AttendanceEntry{
		SubjectID:   engine.SubjectID(subject),
		Date:        d,
		Approved:    approved,
		Allocations: allocs,
	}
}

func alloc(costObject string, hours float64) engine.Allocation {
	return engine.Allocation{
		CostObjectID: engine.CostObjectID(costObject),
		Hours:        decimal.NewFromFloat(hours),
	}
}

// =============================================================================
// FILTERING
// =============================================================================

func TestHoursFor_SumsMatchingAllocations(t *testing.T) {
	// GIVEN: Two approved days split across two cost objects
	// WHEN: Asking for one cost object's hours
	// THEN: Only that cost object's allocations sum

	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), true, alloc("proj-a", 5), alloc("proj-b", 3)),
		entry("emp-1", day(4), true, alloc("proj-a", 6)),
	}

	got := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	if !got.Equal(decimal.NewFromInt(11)) {
		t.Errorf("expected 11 hours, got %v", got)
	}
}

func TestTotalHoursFor_SumsAcrossCostObjects(t *testing.T) {
	// GIVEN: Approved days split across cost objects, plus noise that the
	//        per-cost-object filter would also drop
	// WHEN: Asking for the subject's total hours
	// THEN: Every approved in-window allocation sums, regardless of cost
	//       object; unapproved, out-of-window, and other subjects' time do
	//       not

	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), true, alloc("proj-a", 5), alloc("proj-b", 3)),
		entry("emp-1", day(4), true, alloc("proj-a", 6)),
		entry("emp-1", day(5), false, alloc("proj-a", 8)),
		entry("emp-2", day(3), true, alloc("proj-a", 4)),
		entry("emp-1", engine.NewTimePoint(2025, time.April, 1), true, alloc("proj-a", 7)),
	}

	got := engine.TotalHoursFor("emp-1", entries, march2025())
	if !got.Equal(decimal.NewFromInt(14)) {
		t.Errorf("expected 14 hours, got %v", got)
	}

	// Per-cost-object views reconcile with the total.
	perObject := engine.HoursFor("emp-1", "proj-a", entries, march2025()).
		Add(engine.HoursFor("emp-1", "proj-b", entries, march2025()))
	if !got.Equal(perObject) {
		t.Errorf("total %v != sum of per-cost-object views %v", got, perObject)
	}
}

func TestHoursFor_IgnoresUnapproved(t *testing.T) {
	// Draft/rejected time never earns revenue.
	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), false, alloc("proj-a", 8)),
		entry("emp-1", day(4), true, alloc("proj-a", 2)),
	}

	got := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2 hours, got %v", got)
	}
}

func TestHoursFor_WindowBoundariesInclusive(t *testing.T) {
	// GIVEN: Entries exactly on the window's first and last day, plus one
	//        outside
	entries := []engine.AttendanceEntry{
		entry("emp-1", day(1), true, alloc("proj-a", 4)),
		entry("emp-1", day(31), true, alloc("proj-a", 4)),
		entry("emp-1", engine.NewTimePoint(2025, time.April, 1), true, alloc("proj-a", 8)),
	}

	got := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	if !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected 8 hours (boundaries inclusive, April excluded), got %v", got)
	}
}

func TestHoursFor_OtherSubjectsExcluded(t *testing.T) {
	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), true, alloc("proj-a", 5)),
		entry("emp-2", day(3), true, alloc("proj-a", 7)),
	}

	got := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected 5 hours, got %v", got)
	}
}

func TestHoursFor_NoMatches_ZeroNotError(t *testing.T) {
	// Absence of attendance is a valid zero-revenue state, not a fault.
	got := engine.HoursFor("emp-1", "proj-a", nil, march2025())
	if !got.IsZero() {
		t.Errorf("expected zero hours, got %v", got)
	}
}

// =============================================================================
// PURITY
// =============================================================================

func TestHoursFor_Idempotent(t *testing.T) {
	// Identical arguments, identical totals. The window alone determines
	// the result; no wall-clock involvement.
	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), true, alloc("proj-a", 5.5)),
		entry("emp-1", day(4), true, alloc("proj-a", 2.25)),
	}

	first := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	second := engine.HoursFor("emp-1", "proj-a", entries, march2025())
	if !first.Equal(second) {
		t.Errorf("repeated calls diverged: %v vs %v", first, second)
	}
}

func TestHoursFor_DoesNotMutateEntries(t *testing.T) {
	entries := []engine.AttendanceEntry{
		entry("emp-1", day(3), true, alloc("proj-a", 5)),
	}
	before := entries[0]

	engine.HoursFor("emp-1", "proj-a", entries, march2025())

	if entries[0].SubjectID != before.SubjectID ||
		!entries[0].Date.Equal(before.Date) ||
		entries[0].Approved != before.Approved ||
		len(entries[0].Allocations) != len(before.Allocations) ||
		!entries[0].Allocations[0].Hours.Equal(before.Allocations[0].Hours) {
		t.Error("entry list was mutated")
	}
}
