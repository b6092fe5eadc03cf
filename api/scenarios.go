/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for testing and demos. Each scenario creates subjects, clients,
	engagements, and attendance that demonstrate specific revenue paths.

AVAILABLE SCENARIOS:

	consulting-bench:  Two timesheet consultants on two client projects
	placement-desk:    External fee and internal accrual placements
	mixed-book:        Both revenue paths under one client roster

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create subjects with their schedules
 3. Create clients
 4. Create engagements (timesheet and/or placement)
 5. Record a month of attendance

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-book"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: The CRUD endpoints scenarios pre-populate
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/placement"
	"github.com/warp/attribution-engine/store"
	"github.com/warp/attribution-engine/timesheet"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "consulting-bench",
		Name:        "Consulting Bench",
		Description: "Two timesheet consultants billed hourly and monthly across two clients",
	},
	{
		ID:          "placement-desk",
		Name:        "Placement Desk",
		Description: "External percentage-fee and internal accrual placements",
	},
	{
		ID:          "mixed-book",
		Name:        "Mixed Book",
		Description: "Timesheet and placement revenue under the same client roster",
	},
}

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios,
		"current":   current,
	})
}

// LoadScenario resets the store and loads the requested dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "consulting-bench":
		err = h.loadConsultingBench(ctx)
	case "placement-desk":
		err = h.loadPlacementDesk(ctx)
	case "mixed-book":
		err = h.loadMixedBook(ctx)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// Reset clears all records without loading anything.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadConsultingBench(ctx context.Context) error {
	subjects := []store.Subject{
		{ID: "emp-asha", Name: "Asha Rao", Email: "asha@example.com", Schedule: engine.DefaultSchedule()},
		{ID: "emp-vikram", Name: "Vikram Shah", Email: "vikram@example.com", Schedule: engine.WeekdaySchedule()},
	}
	for _, s := range subjects {
		if err := h.Store.SaveSubject(ctx, s); err != nil {
			return err
		}
	}

	clients := []store.Client{
		{ID: "cli-meridian", Name: "Meridian Retail", Currency: engine.USD},
		{ID: "cli-kovalam", Name: "Kovalam Logistics", Currency: engine.INR},
	}
	for _, c := range clients {
		if err := h.Store.SaveClient(ctx, c); err != nil {
			return err
		}
	}

	// Asha: paid 1200000 INR LPA, billed 100 USD/hour to Meridian.
	e1, err := timesheet.NewEngagement("eng-asha-meridian",
		engine.CompensationRecord{SubjectID: "emp-asha", Amount: engine.NewMoney(1200000, engine.INR), PeriodType: engine.PeriodLPA},
		engine.BillingRecord{CostObjectID: "proj-storefront", ClientID: "cli-meridian", Amount: engine.NewMoney(100, engine.USD), PeriodType: engine.PeriodHourly})
	if err != nil {
		return err
	}
	// Vikram: paid 95000 INR monthly, billed 320000 INR monthly to Kovalam.
	e2, err := timesheet.NewEngagement("eng-vikram-kovalam",
		engine.CompensationRecord{SubjectID: "emp-vikram", Amount: engine.NewMoney(95000, engine.INR), PeriodType: engine.PeriodMonthly},
		engine.BillingRecord{CostObjectID: "proj-fleet", ClientID: "cli-kovalam", Amount: engine.NewMoney(320000, engine.INR), PeriodType: engine.PeriodMonthly})
	if err != nil {
		return err
	}
	for _, e := range []engine.Engagement{e1, e2} {
		if err := h.Store.SaveEngagement(ctx, e); err != nil {
			return err
		}
	}

	return h.loadMarchAttendance(ctx)
}

func (h *Handler) loadPlacementDesk(ctx context.Context) error {
	if err := h.Store.SaveSubject(ctx, store.Subject{ID: "cand-meera", Name: "Meera Pillai", Schedule: engine.DefaultSchedule()}); err != nil {
		return err
	}
	if err := h.Store.SaveSubject(ctx, store.Subject{ID: "cand-arjun", Name: "Arjun Nair", Schedule: engine.DefaultSchedule()}); err != nil {
		return err
	}
	if err := h.Store.SaveClient(ctx, store.Client{ID: "cli-helix", Name: "Helix Biotech", Currency: engine.INR}); err != nil {
		return err
	}

	// Meera: standard percentage fee on a 1800000 LPA placement.
	p1, err := placement.NewExternal("eng-meera-helix", "cand-meera", "req-datasci", "cli-helix",
		engine.CompensationRecord{SubjectID: "cand-meera", Amount: engine.NewMoney(1800000, engine.INR), PeriodType: engine.PeriodLPA},
		placement.StandardFee())
	if err != nil {
		return err
	}
	// Arjun: internal placement, 150000 accrual against 110000 absorbed comp.
	p2, err := placement.NewInternal("eng-arjun-helix", "cand-arjun", "req-qa", "cli-helix",
		engine.CompensationRecord{SubjectID: "cand-arjun", Amount: engine.NewMoney(110000, engine.INR), PeriodType: engine.PeriodMonthly},
		engine.NewMoney(150000, engine.INR))
	if err != nil {
		return err
	}
	for _, e := range []engine.Engagement{p1, p2} {
		if err := h.Store.SaveEngagement(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMixedBook(ctx context.Context) error {
	if err := h.loadConsultingBench(ctx); err != nil {
		return err
	}
	// Add a placement under an existing consulting client.
	if err := h.Store.SaveSubject(ctx, store.Subject{ID: "cand-divya", Name: "Divya Menon", Schedule: engine.DefaultSchedule()}); err != nil {
		return err
	}
	p, err := placement.NewExternal("eng-divya-meridian", "cand-divya", "req-pm", "cli-meridian",
		engine.CompensationRecord{SubjectID: "cand-divya", Amount: engine.NewMoney(2400000, engine.INR), PeriodType: engine.PeriodLPA},
		placement.PercentageFee(10))
	if err != nil {
		return err
	}
	return h.Store.SaveEngagement(ctx, p)
}

// loadMarchAttendance records three weeks of approved time plus one
// unapproved day, so demos show the approval filter doing real work.
func (h *Handler) loadMarchAttendance(ctx context.Context) error {
	eight := decimal.NewFromInt(8)
	split := []engine.Allocation{
		{CostObjectID: "proj-storefront", Hours: decimal.NewFromInt(6)},
		{CostObjectID: "proj-internal", Hours: decimal.NewFromInt(2), Note: "hiring panel"},
	}

	seq := 0
	save := func(subject engine.SubjectID, d engine.TimePoint, approved bool, allocs []engine.Allocation) error {
		seq++
		return h.Store.SaveAttendance(ctx, store.AttendanceRecord{
			ID: fmt.Sprintf("att-%03d", seq),
			Entry: engine.AttendanceEntry{
				SubjectID:   subject,
				Date:        d,
				Approved:    approved,
				Allocations: allocs,
			},
		})
	}

	for d := 3; d <= 21; d++ {
		tp := engine.NewTimePoint(2025, time.March, d)
		if tp.IsWeekend() {
			continue
		}
		if err := save("emp-asha", tp, true, split); err != nil {
			return err
		}
		if err := save("emp-vikram", tp, true, []engine.Allocation{{CostObjectID: "proj-fleet", Hours: eight}}); err != nil {
			return err
		}
	}
	// One submitted-but-unapproved day: visible in attendance, invisible
	// to the financials.
	return save("emp-asha", engine.NewTimePoint(2025, time.March, 24), false, split)
}
