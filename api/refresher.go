/*
refresher.go - Background portfolio metrics refresher

PURPOSE:
  Periodically recomputes the portfolio summary for the current calendar
  year and publishes the totals as Prometheus gauges. Dashboards get
  fresh figures without anyone hitting the financials endpoints.

DESIGN:
  - Runs a background goroutine with configurable refresh interval
  - Computes over the current calendar year window
  - Publishes revenue/cost/profit gauges in the base currency
  - Malformed records make a refresh fail loudly in the log; the last
    published figures stay up until a refresh succeeds again

USAGE:
  refresher := NewPortfolioRefresher(handler)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - metrics.go: The gauges this publishes
  - handlers.go: The on-demand financials endpoints
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/attribution-engine/engine"
	"github.com/warp/attribution-engine/store"
)

// PortfolioRefresher keeps the portfolio gauges current.
type PortfolioRefresher struct {
	Handler         *Handler
	RefreshInterval time.Duration
	Enabled         bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPortfolioRefresher creates a refresher with a 5 minute interval.
func NewPortfolioRefresher(handler *Handler) *PortfolioRefresher {
	return &PortfolioRefresher{
		Handler:         handler,
		RefreshInterval: 5 * time.Minute,
		Enabled:         true,
		stop:            make(chan bool),
	}
}

// Start begins the refresher.
func (pr *PortfolioRefresher) Start() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if !pr.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}

	pr.ticker = time.NewTicker(pr.RefreshInterval)
	pr.wg.Add(1)

	go pr.run()

	log.Printf("[Refresher] Started with refresh interval: %v", pr.RefreshInterval)
}

// Stop stops the refresher.
func (pr *PortfolioRefresher) Stop() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if pr.ticker != nil {
		pr.ticker.Stop()
		close(pr.stop)
		pr.wg.Wait()
		log.Println("[Refresher] Stopped")
	}
}

func (pr *PortfolioRefresher) run() {
	defer pr.wg.Done()

	// Run immediately on start
	pr.refresh()

	for {
		select {
		case <-pr.ticker.C:
			pr.refresh()
		case <-pr.stop:
			return
		}
	}
}

func (pr *PortfolioRefresher) refresh() {
	ctx := context.Background()
	window := engine.CalendarYear(time.Now().UTC().Year())

	engagements, err := pr.Handler.Store.ListEngagements(ctx)
	if err != nil {
		log.Printf("[Refresher] Error listing engagements: %v", err)
		return
	}
	recs, err := pr.Handler.Store.ListAttendance(ctx)
	if err != nil {
		log.Printf("[Refresher] Error listing attendance: %v", err)
		return
	}
	subjects, err := pr.Handler.Store.ListSubjects(ctx)
	if err != nil {
		log.Printf("[Refresher] Error listing subjects: %v", err)
		return
	}

	summary, err := observeAggregation(func() (*engine.Summary, error) {
		return engine.Aggregate(engine.AggregationInput{
			Engagements: engagements,
			Entries:     store.Entries(recs),
			Window:      window,
			Rates:       pr.Handler.Rates,
			Schedules:   store.Schedules(subjects),
		})
	})
	if err != nil {
		log.Printf("[Refresher] Aggregation failed: %v", err)
		return
	}

	publishPortfolio(summary)
}

// RunNow triggers an immediate refresh (for testing/admin).
func (pr *PortfolioRefresher) RunNow() {
	pr.refresh()
}
