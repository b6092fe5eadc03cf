/*
handlers.go - HTTP API handlers for the financial attribution service

PURPOSE:
  Exposes the attribution engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.
  This layer owns data fetching (the store) and policy (rates,
  default schedule); the engine stays pure.

ENDPOINTS:
  Subjects:
    GET    /api/subjects                     List all subjects
    POST   /api/subjects                     Create/update a subject
    GET    /api/subjects/{id}                Get one subject
    GET    /api/subjects/{id}/hours          Attributed hours in a window

  Clients:
    GET    /api/clients                      List all clients
    POST   /api/clients                      Create/update a client
    GET    /api/clients/{id}                 Get one client
    GET    /api/clients/{id}/financials      Client revenue/profit summary

  Engagements:
    GET    /api/engagements                  List all engagements
    POST   /api/engagements                  Create an engagement

  Attendance:
    GET    /api/attendance                   List attendance records
    POST   /api/attendance                   Record a subject-day

  Financials:
    GET    /api/financials                   Portfolio summary
    GET    /api/financials/export            Portfolio summary as CSV

ERROR MAPPING:
  engine.IsClientError  -> 422 (the records are wrong, not the server)
  unknown id            -> 404
  bad request body      -> 400
  anything else         -> 500

SEE ALSO:
  - server.go: Router configuration
  - engine/aggregate.go: The computation behind the financials endpoints
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/placement"
	"github.com/warp/attribution-engine/store"
	"github.com/warp/attribution-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           store.RecordStore
	Rates           engine.RateTable
	DefaultSchedule engine.WorkSchedule

	// Track currently loaded scenario. Written by scenario loads and
	// resets, read by the scenario list; requests are concurrent.
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and financial
// policy.
func NewHandler(st store.RecordStore, rates engine.RateTable, defaultSchedule engine.WorkSchedule) *Handler {
	return &Handler{
		Store:           st,
		Rates:           rates,
		DefaultSchedule: defaultSchedule,
	}
}

// =============================================================================
// SUBJECT HANDLERS
// =============================================================================

// ListSubjects returns all subjects.
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.Store.ListSubjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list subjects", err)
		return
	}

	dtos := make([]SubjectDTO, len(subjects))
	for i, s := range subjects {
		dtos[i] = subjectDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSubject returns a single subject.
func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.Store.GetSubject(r.Context(), engine.SubjectID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get subject", err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Subject not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, subjectDTO(*sub))
}

// CreateSubject creates or updates a subject.
func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	schedule := engine.WorkSchedule{
		WorkingDaysPerYear: req.WorkingDaysPerYear,
		HoursPerDay:        req.HoursPerDay,
	}
	if schedule.IsZero() {
		schedule = h.DefaultSchedule
	}

	sub := store.Subject{
		ID:       engine.SubjectID(req.ID),
		Name:     req.Name,
		Email:    req.Email,
		Schedule: schedule,
	}
	if err := h.Store.SaveSubject(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save subject", err)
		return
	}
	writeJSON(w, http.StatusCreated, subjectDTO(sub))
}

// GetSubjectHours returns the subject's attributed hours in a window,
// optionally narrowed to one cost object.
// GET /api/subjects/{id}/hours?from=...&to=...&cost_object=...
func (h *Handler) GetSubjectHours(w http.ResponseWriter, r *http.Request) {
	id := engine.SubjectID(chi.URLParam(r, "id"))

	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}

	recs, err := h.Store.ListAttendanceBySubject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}
	entries := store.Entries(recs)

	costObject := r.URL.Query().Get("cost_object")
	var hours decimal.Decimal
	if costObject != "" {
		hours = engine.HoursFor(id, engine.CostObjectID(costObject), entries, window)
	} else {
		hours = engine.TotalHoursFor(id, entries, window)
	}

	writeJSON(w, http.StatusOK, HoursDTO{
		SubjectID:    string(id),
		CostObjectID: costObject,
		WindowStart:  window.Start.String(),
		WindowEnd:    window.End.String(),
		Hours:        hours.String(),
	})
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = ClientDTO{ID: string(c.ID), Name: c.Name, Currency: string(c.Currency)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.Store.GetClient(r.Context(), engine.ClientID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, ClientDTO{ID: string(c.ID), Name: c.Name, Currency: string(c.Currency)})
}

// CreateClient creates or updates a client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	c := store.Client{
		ID:       engine.ClientID(req.ID),
		Name:     req.Name,
		Currency: engine.Currency(req.Currency),
	}
	if err := h.Store.SaveClient(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save client", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// GetClientFinancials aggregates one client's engagements over a window.
// GET /api/clients/{id}/financials?from=...&to=...
func (h *Handler) GetClientFinancials(w http.ResponseWriter, r *http.Request) {
	id := engine.ClientID(chi.URLParam(r, "id"))

	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}

	c, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	engagements, err := h.Store.ListEngagementsByClient(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load engagements", err)
		return
	}

	summary, err := h.aggregate(r, engagements, window)
	if err != nil {
		writeAggregationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO(summary, wantLines(r)))
}

// =============================================================================
// ENGAGEMENT HANDLERS
// =============================================================================

// ListEngagements returns all engagements.
func (h *Handler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	engagements, err := h.Store.ListEngagements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list engagements", err)
		return
	}

	dtos := make([]EngagementDTO, len(engagements))
	for i, e := range engagements {
		dtos[i] = engagementDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEngagement creates a timesheet or placement engagement. Intake
// validation happens in the domain packages so data-entry errors surface
// here, not at the first month-end aggregation.
func (h *Handler) CreateEngagement(w http.ResponseWriter, r *http.Request) {
	var req CreateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	eng, err := h.buildEngagement(req)
	if err != nil {
		status := http.StatusBadRequest
		if engine.IsClientError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "Invalid engagement", err)
		return
	}

	if err := h.Store.SaveEngagement(r.Context(), eng); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save engagement", err)
		return
	}
	writeJSON(w, http.StatusCreated, engagementDTO(eng))
}

func (h *Handler) buildEngagement(req CreateEngagementRequest) (engine.Engagement, error) {
	id := engine.EngagementID(req.ID)
	if id == "" {
		id = engine.EngagementID(uuid.NewString())
	}

	compAmount, err := decimal.NewFromString(req.Compensation.Amount)
	if err != nil {
		return engine.Engagement{}, fmt.Errorf("invalid compensation amount %q: %w", req.Compensation.Amount, err)
	}
	comp := engine.CompensationRecord{
		SubjectID: engine.SubjectID(req.SubjectID),
		Amount: engine.Money{
			Amount:   compAmount,
			Currency: engine.Currency(req.Compensation.Currency),
		},
		PeriodType: engine.PeriodType(req.Compensation.PeriodType),
	}

	if engine.EngagementKind(req.Kind) == engine.KindPlacement {
		subject := engine.SubjectID(req.SubjectID)
		costObject := engine.CostObjectID(req.CostObjectID)
		client := engine.ClientID(req.ClientID)

		if req.PlacementClass == string(engine.PlacementInternal) {
			var accrual engine.Money
			if req.Accrual != nil {
				amount, err := decimal.NewFromString(req.Accrual.Amount)
				if err != nil {
					return engine.Engagement{}, fmt.Errorf("invalid accrual amount %q: %w", req.Accrual.Amount, err)
				}
				accrual = engine.Money{Amount: amount, Currency: engine.Currency(req.Accrual.Currency)}
			}
			return placement.NewInternal(id, subject, costObject, client, comp, accrual)
		}

		var fee engine.FeeSpec
		if req.Fee != nil {
			value, err := decimal.NewFromString(req.Fee.Value)
			if err != nil {
				return engine.Engagement{}, fmt.Errorf("invalid fee value %q: %w", req.Fee.Value, err)
			}
			fee = engine.FeeSpec{
				Type:     engine.FeeType(req.Fee.Type),
				Value:    value,
				Currency: engine.Currency(req.Fee.Currency),
			}
		}
		return placement.NewExternal(id, subject, costObject, client, comp, fee)
	}

	var billing engine.BillingRecord
	if req.Billing != nil {
		amount, err := decimal.NewFromString(req.Billing.Amount)
		if err != nil {
			return engine.Engagement{}, fmt.Errorf("invalid billing amount %q: %w", req.Billing.Amount, err)
		}
		billing = engine.BillingRecord{
			CostObjectID: engine.CostObjectID(req.CostObjectID),
			ClientID:     engine.ClientID(req.ClientID),
			Amount:       engine.Money{Amount: amount, Currency: engine.Currency(req.Billing.Currency)},
			PeriodType:   engine.PeriodType(req.Billing.PeriodType),
		}
	}
	return timesheet.NewEngagement(id, comp, billing)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns attendance records, optionally filtered by
// subject.
// GET /api/attendance?subject=...
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	var recs []store.AttendanceRecord
	var err error
	if subject := r.URL.Query().Get("subject"); subject != "" {
		recs, err = h.Store.ListAttendanceBySubject(r.Context(), engine.SubjectID(subject))
	} else {
		recs, err = h.Store.ListAttendance(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = attendanceDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAttendance records one subject-day. The allocation split is
// validated through the timesheet intake path (non-negative hours).
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := engine.ParseTimePoint(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	allocations := make([]engine.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		hours, err := decimal.NewFromString(a.Hours)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hours value", err)
			return
		}
		allocations[i] = engine.Allocation{
			CostObjectID: engine.CostObjectID(a.CostObjectID),
			Hours:        hours,
			Note:         a.Note,
		}
	}

	sheet, err := timesheet.NewSheet(uuid.NewString(), engine.SubjectID(req.SubjectID), date, allocations)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid attendance", err)
		return
	}

	rec := store.AttendanceRecord{
		ID: sheet.ID,
		Entry: engine.AttendanceEntry{
			SubjectID:   sheet.SubjectID,
			Date:        sheet.Date,
			Approved:    req.Approved,
			Allocations: sheet.Allocations,
		},
	}
	if err := h.Store.SaveAttendance(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, attendanceDTO(rec))
}

// =============================================================================
// FINANCIALS HANDLERS
// =============================================================================

// GetFinancials aggregates the whole portfolio over a window.
// GET /api/financials?from=...&to=...&lines=1
func (h *Handler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	window, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window (use from=YYYY-MM-DD&to=YYYY-MM-DD)", err)
		return
	}

	engagements, err := h.Store.ListEngagements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load engagements", err)
		return
	}

	summary, err := h.aggregate(r, engagements, window)
	if err != nil {
		writeAggregationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryDTO(summary, wantLines(r)))
}

// aggregate assembles the engine input snapshot and runs it, recording
// metrics either way.
func (h *Handler) aggregate(r *http.Request, engagements []engine.Engagement, window engine.Window) (*engine.Summary, error) {
	ctx := r.Context()

	recs, err := h.Store.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := h.Store.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}

	return observeAggregation(func() (*engine.Summary, error) {
		return engine.Aggregate(engine.AggregationInput{
			Engagements: engagements,
			Entries:     store.Entries(recs),
			Window:      window,
			Rates:       h.Rates,
			Schedules:   store.Schedules(subjects),
		})
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func windowFromQuery(r *http.Request) (engine.Window, error) {
	from, err := engine.ParseTimePoint(r.URL.Query().Get("from"))
	if err != nil {
		return engine.Window{}, err
	}
	to, err := engine.ParseTimePoint(r.URL.Query().Get("to"))
	if err != nil {
		return engine.Window{}, err
	}
	w := engine.Window{Start: from, End: to}
	return w, w.Validate()
}

func wantLines(r *http.Request) bool {
	return r.URL.Query().Get("lines") == "1"
}

func writeAggregationError(w http.ResponseWriter, err error) {
	if engine.IsClientError(err) {
		writeError(w, http.StatusUnprocessableEntity, "Unable to compute financials", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Aggregation failed", err)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
