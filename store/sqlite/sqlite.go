/*
Package sqlite provides the SQLite-backed RecordStore.

PURPOSE:
  Production persistence for the engine's input records. The same SQL
  shape ports to PostgreSQL with only dialect changes.

MONEY AS TEXT:
  Amounts are stored as decimal strings, never floats. A figure must read
  back exactly as it was written or the roll-up invariant is dead on
  arrival.

KEY TABLES:
  subjects:     Employees/candidates with their working-time policy
  clients:      Billed organizations
  engagements:  Subject<->cost-object<->client pricing records
  attendance:   Day-granular reported time (allocation split as JSON)

WAL MODE:
  Opened with WAL so dashboard reads don't block record writes.

USAGE:
  st, err := sqlite.New("./data/attribution.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store"
)

// Store implements store.RecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.RecordStore = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		working_days_per_year INTEGER NOT NULL,
		hours_per_day INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		currency TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS engagements (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		cost_object_id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		placement_class TEXT,
		comp_amount TEXT NOT NULL,
		comp_currency TEXT NOT NULL,
		comp_period TEXT,
		bill_amount TEXT,
		bill_currency TEXT,
		bill_period TEXT,
		fee_type TEXT,
		fee_value TEXT,
		fee_currency TEXT,
		accrual_amount TEXT,
		accrual_currency TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_engagements_client
		ON engagements(client_id);
	CREATE INDEX IF NOT EXISTS idx_engagements_subject
		ON engagements(subject_id);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		date TEXT NOT NULL,
		approved INTEGER NOT NULL,
		allocations_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_subject_date
		ON attendance(subject_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SUBJECTS
// =============================================================================

func (s *Store) SaveSubject(ctx context.Context, sub store.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO subjects (id, name, email, working_days_per_year, hours_per_day)
		VALUES (?, ?, ?, ?, ?)`,
		string(sub.ID), sub.Name, sub.Email, sub.Schedule.WorkingDaysPerYear, sub.Schedule.HoursPerDay)
	return err
}

func (s *Store) GetSubject(ctx context.Context, id engine.SubjectID) (*store.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, working_days_per_year, hours_per_day
		FROM subjects WHERE id = ?`, string(id))

	var sub store.Subject
	err := row.Scan(&sub.ID, &sub.Name, &sub.Email,
		&sub.Schedule.WorkingDaysPerYear, &sub.Schedule.HoursPerDay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) ListSubjects(ctx context.Context) ([]store.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, working_days_per_year, hours_per_day
		FROM subjects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Subject
	for rows.Next() {
		var sub store.Subject
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email,
			&sub.Schedule.WorkingDaysPerYear, &sub.Schedule.HoursPerDay); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// =============================================================================
// CLIENTS
// =============================================================================

func (s *Store) SaveClient(ctx context.Context, c store.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO clients (id, name, currency) VALUES (?, ?, ?)`,
		string(c.ID), c.Name, string(c.Currency))
	return err
}

func (s *Store) GetClient(ctx context.Context, id engine.ClientID) (*store.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT id, name, currency FROM clients WHERE id = ?`, string(id))

	var c store.Client
	err := row.Scan(&c.ID, &c.Name, &c.Currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]store.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, currency FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Client
	for rows.Next() {
		var c store.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Currency); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// ENGAGEMENTS
// =============================================================================

func (s *Store) SaveEngagement(ctx context.Context, e engine.Engagement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO engagements (
			id, subject_id, cost_object_id, client_id, kind, placement_class,
			comp_amount, comp_currency, comp_period,
			bill_amount, bill_currency, bill_period,
			fee_type, fee_value, fee_currency,
			accrual_amount, accrual_currency
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.SubjectID), string(e.CostObjectID), string(e.ClientID),
		string(e.Kind), string(e.PlacementClass),
		e.Compensation.Amount.Amount.String(), string(e.Compensation.Amount.Currency), string(e.Compensation.PeriodType),
		e.Billing.Amount.Amount.String(), string(e.Billing.Amount.Currency), string(e.Billing.PeriodType),
		string(e.Fee.Type), e.Fee.Value.String(), string(e.Fee.Currency),
		e.AccrualAmount.Amount.String(), string(e.AccrualAmount.Currency))
	return err
}

const engagementColumns = `
	id, subject_id, cost_object_id, client_id, kind, placement_class,
	comp_amount, comp_currency, comp_period,
	bill_amount, bill_currency, bill_period,
	fee_type, fee_value, fee_currency,
	accrual_amount, accrual_currency`

func scanEngagement(rows *sql.Rows) (engine.Engagement, error) {
	var e engine.Engagement
	var compAmount, compCurrency, compPeriod string
	var billAmount, billCurrency, billPeriod string
	var feeType, feeValue, feeCurrency string
	var accrualAmount, accrualCurrency string

	err := rows.Scan(&e.ID, &e.SubjectID, &e.CostObjectID, &e.ClientID, &e.Kind, &e.PlacementClass,
		&compAmount, &compCurrency, &compPeriod,
		&billAmount, &billCurrency, &billPeriod,
		&feeType, &feeValue, &feeCurrency,
		&accrualAmount, &accrualCurrency)
	if err != nil {
		return engine.Engagement{}, err
	}

	// A corrupt amount must fail the read, not flow into aggregation as
	// zero. Same policy as the attendance scan below.
	parse := func(column, value string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("corrupt %s %q for %s: %w", column, value, e.ID, err)
		}
		return d, nil
	}

	comp, err := parse("comp_amount", compAmount)
	if err != nil {
		return engine.Engagement{}, err
	}
	bill, err := parse("bill_amount", billAmount)
	if err != nil {
		return engine.Engagement{}, err
	}
	fee, err := parse("fee_value", feeValue)
	if err != nil {
		return engine.Engagement{}, err
	}
	accrual, err := parse("accrual_amount", accrualAmount)
	if err != nil {
		return engine.Engagement{}, err
	}

	e.Compensation = engine.CompensationRecord{
		SubjectID:  e.SubjectID,
		Amount:     engine.Money{Amount: comp, Currency: engine.Currency(compCurrency)},
		PeriodType: engine.PeriodType(compPeriod),
	}
	e.Billing = engine.BillingRecord{
		CostObjectID: e.CostObjectID,
		ClientID:     e.ClientID,
		Amount:       engine.Money{Amount: bill, Currency: engine.Currency(billCurrency)},
		PeriodType:   engine.PeriodType(billPeriod),
	}
	e.Fee = engine.FeeSpec{
		Type:     engine.FeeType(feeType),
		Value:    fee,
		Currency: engine.Currency(feeCurrency),
	}
	e.AccrualAmount = engine.Money{
		Amount:   accrual,
		Currency: engine.Currency(accrualCurrency),
	}
	return e, nil
}

func (s *Store) listEngagements(ctx context.Context, query string, args ...any) ([]engine.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Engagement
	for rows.Next() {
		e, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListEngagements(ctx context.Context) ([]engine.Engagement, error) {
	return s.listEngagements(ctx, `SELECT `+engagementColumns+` FROM engagements ORDER BY id`)
}

func (s *Store) ListEngagementsByClient(ctx context.Context, id engine.ClientID) ([]engine.Engagement, error) {
	return s.listEngagements(ctx,
		`SELECT `+engagementColumns+` FROM engagements WHERE client_id = ? ORDER BY id`, string(id))
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// allocationRow is the JSON shape for one allocation. Hours ride as a
// decimal string.
type allocationRow struct {
	CostObjectID string `json:"cost_object_id"`
	Hours        string `json:"hours"`
	Note         string `json:"note,omitempty"`
}

func (s *Store) SaveAttendance(ctx context.Context, rec store.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]allocationRow, len(rec.Entry.Allocations))
	for i, a := range rec.Entry.Allocations {
		rows[i] = allocationRow{
			CostObjectID: string(a.CostObjectID),
			Hours:        a.Hours.String(),
			Note:         a.Note,
		}
	}
	allocJSON, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	approved := 0
	if rec.Entry.Approved {
		approved = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO attendance (id, subject_id, date, approved, allocations_json)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Entry.SubjectID), rec.Entry.Date.String(), approved, string(allocJSON))
	return err
}

func (s *Store) listAttendance(ctx context.Context, query string, args ...any) ([]store.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.AttendanceRecord
	for rows.Next() {
		var rec store.AttendanceRecord
		var date string
		var approved int
		var allocJSON string
		if err := rows.Scan(&rec.ID, &rec.Entry.SubjectID, &date, &approved, &allocJSON); err != nil {
			return nil, err
		}

		tp, err := engine.ParseTimePoint(date)
		if err != nil {
			return nil, fmt.Errorf("corrupt attendance date %q: %w", date, err)
		}
		rec.Entry.Date = tp
		rec.Entry.Approved = approved == 1

		var allocRows []allocationRow
		if err := json.Unmarshal([]byte(allocJSON), &allocRows); err != nil {
			return nil, fmt.Errorf("corrupt allocations for %s: %w", rec.ID, err)
		}
		rec.Entry.Allocations = make([]engine.Allocation, len(allocRows))
		for i, a := range allocRows {
			hours, err := decimal.NewFromString(a.Hours)
			if err != nil {
				return nil, fmt.Errorf("corrupt hours %q for %s: %w", a.Hours, rec.ID, err)
			}
			rec.Entry.Allocations[i] = engine.Allocation{
				CostObjectID: engine.CostObjectID(a.CostObjectID),
				Hours:        hours,
				Note:         a.Note,
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ListAttendance(ctx context.Context) ([]store.AttendanceRecord, error) {
	return s.listAttendance(ctx, `
		SELECT id, subject_id, date, approved, allocations_json
		FROM attendance ORDER BY id`)
}

func (s *Store) ListAttendanceBySubject(ctx context.Context, id engine.SubjectID) ([]store.AttendanceRecord, error) {
	return s.listAttendance(ctx, `
		SELECT id, subject_id, date, approved, allocations_json
		FROM attendance WHERE subject_id = ? ORDER BY id`, string(id))
}

// =============================================================================
// RESET
// =============================================================================

func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{"attendance", "engagements", "clients", "subjects"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}
