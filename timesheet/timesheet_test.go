package timesheet_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func march(d int) engine.TimePoint { return engine.NewTimePoint(2025, time.March, d) }

func alloc(costObject string, hours float64) engine.Allocation {
	return engine.Allocation{CostObjectID: engine.CostObjectID(costObject), Hours: decimal.NewFromFloat(hours)}
}

func draftSheet(t *testing.T, d engine.TimePoint, allocs ...engine.Allocation) *timesheet.Sheet {
	t.Helper()
	s, err := timesheet.NewSheet("ts-1", "emp-1", d, allocs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

// =============================================================================
// INTAKE VALIDATION
// =============================================================================

func TestNewSheet_NegativeHours_Rejected(t *testing.T) {
	_, err := timesheet.NewSheet("ts-1", "emp-1", march(3), []engine.Allocation{alloc("proj-a", -1)})
	if !errors.Is(err, timesheet.ErrNegativeHours) {
		t.Fatalf("expected ErrNegativeHours, got %v", err)
	}
}

func TestNewSheet_NoAllocations_Rejected(t *testing.T) {
	_, err := timesheet.NewSheet("ts-1", "emp-1", march(3), nil)
	if !errors.Is(err, timesheet.ErrNoAllocations) {
		t.Fatalf("expected ErrNoAllocations, got %v", err)
	}
}

func TestNewSheet_SplitNeedNotSumToFullDay(t *testing.T) {
	// The allocation split is taken as reported; 5 + 1.5 = 6.5 is fine.
	s := draftSheet(t, march(3), alloc("proj-a", 5), alloc("proj-b", 1.5))
	if !s.TotalHours().Equal(decimal.NewFromFloat(6.5)) {
		t.Errorf("expected 6.5 reported hours, got %v", s.TotalHours())
	}
}

// =============================================================================
// WORKFLOW
// =============================================================================

func TestWorkflow_OnlyApprovedTimeReachesTheEngine(t *testing.T) {
	// GIVEN: One approved, one still-submitted, one rejected sheet
	// WHEN: Converting to entries and attributing
	// THEN: Only the approved sheet's hours count

	approved := draftSheet(t, march(3), alloc("proj-a", 8))
	submitted := draftSheet(t, march(4), alloc("proj-a", 8))
	rejected := draftSheet(t, march(5), alloc("proj-a", 8))

	for _, s := range []*timesheet.Sheet{approved, submitted, rejected} {
		if err := s.Submit(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := approved.Approve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rejected.Reject("duplicate entry"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := timesheet.Entries([]*timesheet.Sheet{approved, submitted, rejected})
	window := engine.Window{Start: march(1), End: march(31)}
	hours := engine.HoursFor("emp-1", "proj-a", entries, window)

	if !hours.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected 8 approved hours, got %v", hours)
	}
}

func TestWorkflow_InvalidTransitions(t *testing.T) {
	s := draftSheet(t, march(3), alloc("proj-a", 8))

	if err := s.Approve(); !errors.Is(err, timesheet.ErrInvalidTransition) {
		t.Errorf("draft -> approved must fail, got %v", err)
	}
	if err := s.Reject("nope"); !errors.Is(err, timesheet.ErrInvalidTransition) {
		t.Errorf("draft -> rejected must fail, got %v", err)
	}

	if err := s.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Submit(); !errors.Is(err, timesheet.ErrInvalidTransition) {
		t.Errorf("double submit must fail, got %v", err)
	}
}

func TestFilterWorkdays_DropsWeekends(t *testing.T) {
	// March 1 2025 is a Saturday, March 3 a Monday.
	sat := draftSheet(t, march(1), alloc("proj-a", 8))
	mon := draftSheet(t, march(3), alloc("proj-a", 8))

	kept := timesheet.FilterWorkdays([]*timesheet.Sheet{sat, mon})
	if len(kept) != 1 || !kept[0].Date.Equal(march(3)) {
		t.Errorf("expected only the Monday sheet, got %d sheets", len(kept))
	}
}

// =============================================================================
// ENGAGEMENT CONSTRUCTION
// =============================================================================

func TestNewEngagement_RequiresBothRecords(t *testing.T) {
	comp := engine.CompensationRecord{SubjectID: "emp-1", Amount: engine.NewMoney(1200000, engine.INR), PeriodType: engine.PeriodLPA}

	_, err := timesheet.NewEngagement("e-1", comp, engine.BillingRecord{})
	if !errors.Is(err, timesheet.ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}

	billing := engine.BillingRecord{CostObjectID: "proj-a", ClientID: "cli-1", Amount: engine.NewMoney(100, engine.USD), PeriodType: engine.PeriodHourly}
	eng, err := timesheet.NewEngagement("e-1", comp, billing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.Kind != engine.KindTimesheet || eng.SubjectID != "emp-1" || eng.ClientID != "cli-1" {
		t.Errorf("engagement mis-assembled: %+v", eng)
	}
}
