/*
export.go - CSV export of financial summaries

PURPOSE:
  The export collaborator: renders an aggregation as CSV for spreadsheet
  consumers. One row per engagement line item, followed by per-client
  subtotals and the portfolio total. Rounding to two places happens HERE,
  at the display layer, never inside the engine - the subtotal rows are
  sums of unrounded figures, so they reconcile with the lines up to
  display precision only, as any accountant expects.
*/
package api

import (
	"encoding/csv"
	"net/http"
	"sort"

	"github.com/warp/attribution-engine/engine"
)

// ExportFinancials writes the portfolio summary as CSV.
// GET /api/financials/export?from=...&to=...
func (h *Handler) ExportFinancials(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="financials_`+window.Start.String()+`_`+window.End.String()+`.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"record", "engagement", "subject", "cost_object", "client", "kind", "hours", "revenue", "cost", "profit", "currency"})

	base := string(summary.Base)
	for _, l := range summary.Lines {
		cw.Write([]string{
			"line",
			string(l.EngagementID),
			string(l.SubjectID),
			string(l.CostObjectID),
			string(l.ClientID),
			string(l.Kind),
			l.Hours.StringFixed(2),
			l.Figures.Revenue.Amount.StringFixed(2),
			l.Figures.Cost.Amount.StringFixed(2),
			l.Figures.Profit.Amount.StringFixed(2),
			base,
		})
	}

	clientIDs := make([]string, 0, len(summary.ByClient))
	for id := range summary.ByClient {
		clientIDs = append(clientIDs, string(id))
	}
	sort.Strings(clientIDs)
	for _, id := range clientIDs {
		f := summary.ByClient[engine.ClientID(id)]
		cw.Write([]string{
			"client_total", "", "", "", id, "", "",
			f.Revenue.Amount.StringFixed(2),
			f.Cost.Amount.StringFixed(2),
			f.Profit.Amount.StringFixed(2),
			base,
		})
	}

	cw.Write([]string{
		"portfolio_total", "", "", "", "", "", "",
		summary.Total.Revenue.Amount.StringFixed(2),
		summary.Total.Cost.Amount.StringFixed(2),
		summary.Total.Profit.Amount.StringFixed(2),
		base,
	})
}
