// Package memory provides an in-memory RecordStore for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	subjects    map[engine.SubjectID]store.Subject
	clients     map[engine.ClientID]store.Client
	engagements map[engine.EngagementID]engine.Engagement
	attendance  map[string]store.AttendanceRecord
}

var _ store.RecordStore = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (m *Store) reset() {
	m.subjects = make(map[engine.SubjectID]store.Subject)
	m.clients = make(map[engine.ClientID]store.Client)
	m.engagements = make(map[engine.EngagementID]engine.Engagement)
	m.attendance = make(map[string]store.AttendanceRecord)
}

// =============================================================================
// SUBJECTS
// =============================================================================

func (m *Store) SaveSubject(_ context.Context, s store.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[s.ID] = s
	return nil
}

func (m *Store) GetSubject(_ context.Context, id engine.SubjectID) (*store.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *Store) ListSubjects(_ context.Context) ([]store.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// CLIENTS
// =============================================================================

func (m *Store) SaveClient(_ context.Context, c store.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
	return nil
}

func (m *Store) GetClient(_ context.Context, id engine.ClientID) (*store.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.clients[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Store) ListClients(_ context.Context) ([]store.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// ENGAGEMENTS
// =============================================================================

func (m *Store) SaveEngagement(_ context.Context, e engine.Engagement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engagements[e.ID] = e
	return nil
}

func (m *Store) ListEngagements(_ context.Context) ([]engine.Engagement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Engagement, 0, len(m.engagements))
	for _, e := range m.engagements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) ListEngagementsByClient(ctx context.Context, id engine.ClientID) ([]engine.Engagement, error) {
	all, _ := m.ListEngagements(ctx)
	var out []engine.Engagement
	for _, e := range all {
		if e.ClientID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Store) SaveAttendance(_ context.Context, rec store.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[rec.ID] = rec
	return nil
}

func (m *Store) ListAttendance(_ context.Context) ([]store.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]store.AttendanceRecord, 0, len(m.attendance))
	for _, r := range m.attendance {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) ListAttendanceBySubject(ctx context.Context, id engine.SubjectID) ([]store.AttendanceRecord, error) {
	all, _ := m.ListAttendance(ctx)
	var out []store.AttendanceRecord
	for _, r := range all {
		if r.Entry.SubjectID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

// =============================================================================
// RESET
// =============================================================================

func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}
