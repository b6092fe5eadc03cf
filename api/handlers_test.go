/*
handlers_test.go - HTTP-level tests for the API

Tests for:
- Subject and client CRUD
- Engagement intake validation over HTTP
- Attendance intake validation over HTTP
- Financials endpoints (portfolio, per-client, conservation, CSV)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store/memory"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestAPI(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	st := memory.New()
	rates := engine.NewRateTable(engine.INR, map[engine.Currency]float64{
		engine.USD: 84,
	})
	h := NewHandler(st, rates, engine.DefaultSchedule())
	return NewRouter(h), st
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// seedPortfolio builds a small two-client book over HTTP:
//   - emp-1 at 400 INR/hour, billed at 100 USD/hour to cli-us (10 approved hours)
//   - emp-2 at 150 INR/hour, billed at 100 INR/hour to cli-in (5 approved hours)
//
// All rates are hourly so the expected figures are plain products.
func seedPortfolio(t *testing.T, router http.Handler) {
	t.Helper()

	for _, sub := range []SubjectDTO{
		{ID: "emp-1", Name: "Asha Rao"},
		{ID: "emp-2", Name: "Vikram Shah"},
	} {
		rec := doRequest(t, router, http.MethodPost, "/api/subjects", sub)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	for _, c := range []ClientDTO{
		{ID: "cli-us", Name: "Meridian Retail", Currency: "USD"},
		{ID: "cli-in", Name: "Kovalam Logistics", Currency: "INR"},
	} {
		rec := doRequest(t, router, http.MethodPost, "/api/clients", c)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	engagements := []CreateEngagementRequest{
		{
			ID: "eng-1", SubjectID: "emp-1", CostObjectID: "proj-a", ClientID: "cli-us", Kind: "timesheet",
			Compensation: RateFigureDTO{Amount: "400", Currency: "INR", PeriodType: "Hourly"},
			Billing:      &RateFigureDTO{Amount: "100", Currency: "USD", PeriodType: "Hourly"},
		},
		{
			ID: "eng-2", SubjectID: "emp-2", CostObjectID: "proj-b", ClientID: "cli-in", Kind: "timesheet",
			Compensation: RateFigureDTO{Amount: "150", Currency: "INR", PeriodType: "Hourly"},
			Billing:      &RateFigureDTO{Amount: "100", Currency: "INR", PeriodType: "Hourly"},
		},
	}
	for _, e := range engagements {
		rec := doRequest(t, router, http.MethodPost, "/api/engagements", e)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	attendance := []CreateAttendanceRequest{
		{SubjectID: "emp-1", Date: "2025-03-10", Approved: true,
			Allocations: []AllocationDTO{{CostObjectID: "proj-a", Hours: "8"}}},
		{SubjectID: "emp-1", Date: "2025-03-11", Approved: true,
			Allocations: []AllocationDTO{{CostObjectID: "proj-a", Hours: "2"}}},
		// Unapproved day: must not reach the financials.
		{SubjectID: "emp-1", Date: "2025-03-12", Approved: false,
			Allocations: []AllocationDTO{{CostObjectID: "proj-a", Hours: "4"}}},
		{SubjectID: "emp-2", Date: "2025-03-10", Approved: true,
			Allocations: []AllocationDTO{{CostObjectID: "proj-b", Hours: "5"}}},
	}
	for _, a := range attendance {
		rec := doRequest(t, router, http.MethodPost, "/api/attendance", a)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// SUBJECT AND CLIENT TESTS
// =============================================================================

func TestCreateSubject_ThenGet(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/subjects", SubjectDTO{
		ID: "emp-1", Name: "Asha Rao", Email: "asha@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/subjects/emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[SubjectDTO](t, rec)
	assert.Equal(t, "Asha Rao", got.Name)
	// Default schedule applies when the request carries none.
	assert.Equal(t, 365, got.WorkingDaysPerYear)
	assert.Equal(t, 8, got.HoursPerDay)
}

func TestGetSubject_NotFound(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodGet, "/api/subjects/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSubject_MissingFields(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/subjects", SubjectDTO{ID: "emp-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateClient_ThenList(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/clients", ClientDTO{
		ID: "cli-1", Name: "Helix Biotech", Currency: "INR",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	clients := decodeBody[[]ClientDTO](t, rec)
	require.Len(t, clients, 1)
	assert.Equal(t, "Helix Biotech", clients[0].Name)
}

// =============================================================================
// ENGAGEMENT INTAKE TESTS
// =============================================================================

func TestCreateEngagement_Placement(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/engagements", CreateEngagementRequest{
		SubjectID: "cand-1", CostObjectID: "req-1", ClientID: "cli-1", Kind: "placement",
		Compensation: RateFigureDTO{Amount: "1200000", Currency: "INR", PeriodType: "LPA"},
		Fee:          &FeeDTO{Type: "percentage", Value: "8.33"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decodeBody[EngagementDTO](t, rec)
	// Server assigns an id when the request omits one.
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "placement", got.Kind)
}

func TestCreateEngagement_UnknownFeeType(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/engagements", CreateEngagementRequest{
		SubjectID: "cand-1", CostObjectID: "req-1", ClientID: "cli-1", Kind: "placement",
		Compensation: RateFigureDTO{Amount: "1200000", Currency: "INR", PeriodType: "LPA"},
		Fee:          &FeeDTO{Type: "retainer", Value: "50000"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateEngagement_NegativeFee(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/engagements", CreateEngagementRequest{
		SubjectID: "cand-1", CostObjectID: "req-1", ClientID: "cli-1", Kind: "placement",
		Compensation: RateFigureDTO{Amount: "1200000", Currency: "INR", PeriodType: "LPA"},
		Fee:          &FeeDTO{Type: "flat", Value: "-50000", Currency: "INR"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// =============================================================================
// ATTENDANCE INTAKE TESTS
// =============================================================================

func TestCreateAttendance_NegativeHours(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/attendance", CreateAttendanceRequest{
		SubjectID: "emp-1", Date: "2025-03-10", Approved: true,
		Allocations: []AllocationDTO{{CostObjectID: "proj-a", Hours: "-2"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateAttendance_BadDate(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodPost, "/api/attendance", CreateAttendanceRequest{
		SubjectID: "emp-1", Date: "10/03/2025", Approved: true,
		Allocations: []AllocationDTO{{CostObjectID: "proj-a", Hours: "8"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// FINANCIALS TESTS
// =============================================================================

func TestFinancials_Portfolio(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/financials?from=2025-03-01&to=2025-03-31&lines=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[SummaryDTO](t, rec)
	assert.Equal(t, "INR", got.BaseCurrency)

	// emp-1: 10h at 8400 revenue / 400 cost per hour.
	// emp-2: 5h at 100 revenue / 150 cost per hour.
	assert.Equal(t, "84500", got.Total.Revenue)
	assert.Equal(t, "4750", got.Total.Cost)
	assert.Equal(t, "79750", got.Total.Profit)

	assert.Equal(t, "84000", got.ByClient["cli-us"].Revenue)
	assert.Equal(t, "500", got.ByClient["cli-in"].Revenue)
	assert.Equal(t, "-250", got.ByClient["cli-in"].Profit)

	assert.Equal(t, "10", got.BySubject["emp-1"].Hours)

	require.Len(t, got.Lines, 2)
	assert.Equal(t, "eng-1", got.Lines[0].EngagementID)
}

func TestFinancials_ConservationOverHTTP(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/financials?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[SummaryDTO](t, rec)

	sum := func(pick func(FiguresDTO) string) string {
		total := engine.MustParseDecimal("0")
		for _, f := range got.ByClient {
			total = total.Add(engine.MustParseDecimal(pick(f)))
		}
		return total.String()
	}
	assert.Equal(t, got.Total.Revenue, sum(func(f FiguresDTO) string { return f.Revenue }))
	assert.Equal(t, got.Total.Cost, sum(func(f FiguresDTO) string { return f.Cost }))
	assert.Equal(t, got.Total.Profit, sum(func(f FiguresDTO) string { return f.Profit }))
}

func TestFinancials_InvalidWindow(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodGet, "/api/financials?from=2025-03-31&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinancials_MalformedRecordIsClientError(t *testing.T) {
	router, st := newTestAPI(t)
	seedPortfolio(t, router)

	// A corrupt record slipped past intake (negative compensation saved
	// directly). Aggregation must refuse the whole portfolio, not skip it.
	bad := engine.Engagement{
		ID:   "eng-bad",
		Kind: engine.KindTimesheet,
		Compensation: engine.CompensationRecord{
			SubjectID:  "emp-1",
			Amount:     engine.NewMoney(-1000, engine.INR),
			PeriodType: engine.PeriodMonthly,
		},
		Billing: engine.BillingRecord{
			CostObjectID: "proj-a",
			ClientID:     "cli-us",
			Amount:       engine.NewMoney(100, engine.INR),
			PeriodType:   engine.PeriodHourly,
		},
	}
	require.NoError(t, st.SaveEngagement(context.Background(), bad))

	rec := doRequest(t, router, http.MethodGet, "/api/financials?from=2025-03-01&to=2025-03-31", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestClientFinancials_ScopedToClient(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/clients/cli-in/financials?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[SummaryDTO](t, rec)
	assert.Equal(t, "500", got.Total.Revenue)
	assert.NotContains(t, got.ByClient, "cli-us")
}

func TestClientFinancials_UnknownClient(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doRequest(t, router, http.MethodGet, "/api/clients/nobody/financials?from=2025-03-01&to=2025-03-31", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubjectHours(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/subjects/emp-1/hours?from=2025-03-01&to=2025-03-31&cost_object=proj-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[HoursDTO](t, rec)
	assert.Equal(t, "10", got.Hours)
}

func TestSubjectHours_AllCostObjects(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	// No cost_object filter: every approved allocation counts, the
	// unapproved day still does not.
	rec := doRequest(t, router, http.MethodGet, "/api/subjects/emp-1/hours?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeBody[HoursDTO](t, rec)
	assert.Equal(t, "10", got.Hours)
	assert.Empty(t, got.CostObjectID)
}

func TestExportFinancials_CSV(t *testing.T) {
	router, _ := newTestAPI(t)
	seedPortfolio(t, router)

	rec := doRequest(t, router, http.MethodGet, "/api/financials/export?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[0], "revenue")
	assert.Contains(t, body, "portfolio_total")
	assert.Contains(t, body, "84500.00")
}

// =============================================================================
// BACKGROUND REFRESHER TESTS
// =============================================================================

func TestPortfolioRefresher_RunNow(t *testing.T) {
	st := memory.New()
	rates := engine.NewRateTable(engine.INR, map[engine.Currency]float64{engine.USD: 84})
	h := NewHandler(st, rates, engine.DefaultSchedule())

	// Empty store: the refresh must still succeed and publish zeros.
	refresher := NewPortfolioRefresher(h)
	refresher.RunNow()
}
