// Package timesheet implements intake and approval for timesheet-based
// engagements. Attendance flows through a small approval workflow here;
// the engine only ever sees entries this package has marked approved.
package timesheet

import (
	"github.com/shopspring/decimal"
	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// TIMESHEET STATUS
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Sheet is one subject's reported day on its way through approval. Only an
// approved sheet ever becomes an engine.AttendanceEntry with Approved set.
type Sheet struct {
	ID          string
	SubjectID   engine.SubjectID
	Date        engine.TimePoint
	Allocations []engine.Allocation
	Status      Status
	Note        string
}

// TotalHours is the sheet's reported hours across all cost objects.
func (s *Sheet) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Allocations {
		total = total.Add(a.Hours)
	}
	return total
}

// ToEntry converts the sheet into the engine's attendance shape. Approved
// follows the workflow status, so draft and rejected time can be passed to
// the engine safely: attribution will skip it.
func (s *Sheet) ToEntry() engine.AttendanceEntry {
	return engine.AttendanceEntry{
		SubjectID:   s.SubjectID,
		Date:        s.Date,
		Approved:    s.Status == StatusApproved,
		Allocations: s.Allocations,
	}
}

// Entries converts a batch of sheets for an aggregation call.
func Entries(sheets []*Sheet) []engine.AttendanceEntry {
	out := make([]engine.AttendanceEntry, len(sheets))
	for i, s := range sheets {
		out[i] = s.ToEntry()
	}
	return out
}
