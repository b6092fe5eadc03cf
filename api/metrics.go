package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/warp/attribution-engine/engine"
)

// =============================================================================
// AGGREGATION METRICS
// =============================================================================

var aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attribution_aggregations_total",
	Help: "Aggregation calls by outcome (ok, client_error, error).",
}, []string{"outcome"})

var aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "attribution_aggregation_duration_seconds",
	Help:    "Wall time of a full aggregation call.",
	Buckets: prometheus.DefBuckets,
})

var aggregationEngagements = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "attribution_aggregation_engagements",
	Help:    "Engagements priced per aggregation call.",
	Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
})

// Portfolio gauges published by the background refresher. Gauges are
// float64 so the decimal exactness of the API responses does not extend
// here; these are for dashboards, not books.
var portfolioFigure = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "attribution_portfolio_amount",
	Help: "Latest refreshed portfolio figure in the base currency.",
}, []string{"figure"})

var portfolioRefreshedAt = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "attribution_portfolio_refreshed_at_seconds",
	Help: "Unix time of the last successful portfolio refresh.",
})

func publishPortfolio(s *engine.Summary) {
	portfolioFigure.WithLabelValues("revenue").Set(s.Total.Revenue.Amount.InexactFloat64())
	portfolioFigure.WithLabelValues("cost").Set(s.Total.Cost.Amount.InexactFloat64())
	portfolioFigure.WithLabelValues("profit").Set(s.Total.Profit.Amount.InexactFloat64())
	portfolioRefreshedAt.SetToCurrentTime()
}

// observeAggregation times an aggregation and records its outcome. The
// engine itself stays clock-free; timing lives out here with the rest of
// the service concerns.
func observeAggregation(fn func() (*engine.Summary, error)) (*engine.Summary, error) {
	start := time.Now()
	summary, err := fn()
	aggregationDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		aggregationsTotal.WithLabelValues("ok").Inc()
		aggregationEngagements.Observe(float64(len(summary.Lines)))
	case engine.IsClientError(err):
		aggregationsTotal.WithLabelValues("client_error").Inc()
	default:
		aggregationsTotal.WithLabelValues("error").Inc()
	}
	return summary, err
}
