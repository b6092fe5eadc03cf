/*
workflow.go - Timesheet approval transitions and intake validation

PURPOSE:
  Gates what reaches the attribution engine. A sheet must pass intake
  validation (non-negative hours, a real day) and the approval workflow
  before its hours can earn revenue.

TRANSITIONS:
  draft -> submitted -> approved
                     -> rejected
  Anything else is an invalid transition.

SEE ALSO:
  - engine/attribution.go: Consumes only approved entries
*/
package timesheet

import (
	"errors"
	"fmt"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNegativeHours is returned when any allocation reports negative time.
	ErrNegativeHours = errors.New("negative hours")

	// ErrNoAllocations is returned for a sheet that reports no split at all.
	ErrNoAllocations = errors.New("sheet has no allocations")

	// ErrInvalidTransition is returned for an out-of-order workflow step.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrMissingRecord is returned when a timesheet engagement lacks its
	// compensation or billing record.
	ErrMissingRecord = errors.New("timesheet engagement requires compensation and billing")
)

// =============================================================================
// INTAKE
// =============================================================================

// NewSheet validates and creates a draft sheet. The allocation hours need
// not sum to any fixed daily total; they are the reported split as-is.
func NewSheet(id string, subject engine.SubjectID, date engine.TimePoint, allocations []engine.Allocation) (*Sheet, error) {
	if len(allocations) == 0 {
		return nil, ErrNoAllocations
	}
	for _, a := range allocations {
		if a.Hours.IsNegative() {
			return nil, fmt.Errorf("%w: %v on %s", ErrNegativeHours, a.Hours, a.CostObjectID)
		}
	}
	return &Sheet{
		ID:          id,
		SubjectID:   subject,
		Date:        date,
		Allocations: allocations,
		Status:      StatusDraft,
	}, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func (s *Sheet) Submit() error {
	if s.Status != StatusDraft {
		return fmt.Errorf("%w: %s -> submitted", ErrInvalidTransition, s.Status)
	}
	s.Status = StatusSubmitted
	return nil
}

func (s *Sheet) Approve() error {
	if s.Status != StatusSubmitted {
		return fmt.Errorf("%w: %s -> approved", ErrInvalidTransition, s.Status)
	}
	s.Status = StatusApproved
	return nil
}

func (s *Sheet) Reject(note string) error {
	if s.Status != StatusSubmitted {
		return fmt.Errorf("%w: %s -> rejected", ErrInvalidTransition, s.Status)
	}
	s.Status = StatusRejected
	s.Note = note
	return nil
}

// =============================================================================
// ENGAGEMENT CONSTRUCTION
// =============================================================================

// NewEngagement builds a timesheet engagement, enforcing that both the
// compensation and billing records are present. Rate validity (negative
// amounts, unknown currencies) is the engine's concern at aggregation
// time; presence is an intake concern.
func NewEngagement(id engine.EngagementID, comp engine.CompensationRecord, billing engine.BillingRecord) (engine.Engagement, error) {
	if comp.SubjectID == "" || billing.CostObjectID == "" || billing.ClientID == "" {
		return engine.Engagement{}, ErrMissingRecord
	}
	return engine.Engagement{
		ID:           id,
		SubjectID:    comp.SubjectID,
		CostObjectID: billing.CostObjectID,
		ClientID:     billing.ClientID,
		Kind:         engine.KindTimesheet,
		Compensation: comp,
		Billing:      billing,
	}, nil
}

// FilterWorkdays drops weekend sheets from a batch. Weekday-schedule
// subjects report Monday to Friday; stray weekend rows are data noise.
func FilterWorkdays(sheets []*Sheet) []*Sheet {
	var out []*Sheet
	for _, s := range sheets {
		if s.Date.IsWorkday() {
			out = append(out, s)
		}
	}
	return out
}
