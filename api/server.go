/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/subjects/*       Worker and candidate records
  /api/clients/*        Client records and per-client financials
  /api/engagements/*    Timesheet and placement engagements
  /api/attendance/*     Attendance intake
  /api/financials       Portfolio summary and CSV export
  /api/scenarios/*      Demo scenarios
  /api/reset            Store reset (dev only)
  /metrics              Prometheus metrics

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Subject routes
		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", h.ListSubjects)
			r.Post("/", h.CreateSubject)
			r.Get("/{id}", h.GetSubject)
			r.Get("/{id}/hours", h.GetSubjectHours)
		})

		// Client routes
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.ListClients)
			r.Post("/", h.CreateClient)
			r.Get("/{id}", h.GetClient)
			r.Get("/{id}/financials", h.GetClientFinancials)
		})

		// Engagement routes
		r.Route("/engagements", func(r chi.Router) {
			r.Get("/", h.ListEngagements)
			r.Post("/", h.CreateEngagement)
		})

		// Attendance routes
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Post("/", h.CreateAttendance)
		})

		// Financial summary routes
		r.Route("/financials", func(r chi.Router) {
			r.Get("/", h.GetFinancials)
			r.Get("/export", h.ExportFinancials)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.Reset)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Landing page so a browser hit at / shows something useful
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Attribution Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Attribution Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/subjects">/api/subjects</a> - List subjects</li>
<li><a href="/api/clients">/api/clients</a> - List clients</li>
<li><a href="/api/engagements">/api/engagements</a> - List engagements</li>
<li><a href="/api/financials">/api/financials</a> - Portfolio summary</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
<li><a href="/metrics">/metrics</a> - Prometheus metrics</li>
</ul>
</body>
</html>`))
	})

	return r
}
