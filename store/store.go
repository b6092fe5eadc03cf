/*
Package store defines persistence for the engine's input records.

PURPOSE:
  The attribution engine itself is pure: it computes from snapshots the
  caller hands it and persists nothing. This package is that caller's
  storage side - subjects, clients, engagements, and attendance live here
  and get loaded into an engine.AggregationInput per query.

DERIVED DATA IS NEVER STORED:
  Summaries (revenue/profit trees) are recomputed on every query. There
  is deliberately no table for them: storing derived aggregates invites
  drift between the stored figure and what the inputs actually sum to.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite (WAL, migrate-on-open)
  - store/memory: In-memory for tests and demos

SEE ALSO:
  - api/handlers.go: Loads snapshots from here and calls the engine
*/
package store

import (
	"context"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Subject is an employee or candidate on file, including the working-time
// policy used to normalize their yearly/monthly figures.
type Subject struct {
	ID       engine.SubjectID
	Name     string
	Email    string
	Schedule engine.WorkSchedule
}

// Client is a billed organization.
type Client struct {
	ID       engine.ClientID
	Name     string
	Currency engine.Currency
}

// AttendanceRecord wraps an attendance entry with a storage identity.
type AttendanceRecord struct {
	ID    string
	Entry engine.AttendanceEntry
}

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordStore persists the engine's input records. Writes are upserts
// keyed on record ID: re-saving a corrected row replaces the old one, and
// the next aggregation recomputes from scratch.
type RecordStore interface {
	SaveSubject(ctx context.Context, s Subject) error
	GetSubject(ctx context.Context, id engine.SubjectID) (*Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)

	SaveClient(ctx context.Context, c Client) error
	GetClient(ctx context.Context, id engine.ClientID) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)

	SaveEngagement(ctx context.Context, e engine.Engagement) error
	ListEngagements(ctx context.Context) ([]engine.Engagement, error)
	ListEngagementsByClient(ctx context.Context, id engine.ClientID) ([]engine.Engagement, error)

	SaveAttendance(ctx context.Context, rec AttendanceRecord) error
	ListAttendance(ctx context.Context) ([]AttendanceRecord, error)
	ListAttendanceBySubject(ctx context.Context, id engine.SubjectID) ([]AttendanceRecord, error)

	// Reset clears all records. Dev/demo use only (scenario loading).
	Reset(ctx context.Context) error
}

// Entries strips storage identities for an aggregation call.
func Entries(recs []AttendanceRecord) []engine.AttendanceEntry {
	out := make([]engine.AttendanceEntry, len(recs))
	for i, r := range recs {
		out[i] = r.Entry
	}
	return out
}

// Schedules builds the per-subject schedule set the engine needs.
func Schedules(subjects []Subject) engine.ScheduleSet {
	set := make(engine.ScheduleSet, len(subjects))
	for _, s := range subjects {
		if !s.Schedule.IsZero() {
			set[s.ID] = s.Schedule
		}
	}
	return set
}
