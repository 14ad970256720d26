package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/coldreach/prospector/internal/api/middleware"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	SearchHandler      http.HandlerFunc
	StopHandler        http.HandlerFunc
	JobResultsHandler  http.HandlerFunc
	AcknowledgeHandler http.HandlerFunc
	DismissHandler     http.HandlerFunc

	HistoryHandler      http.HandlerFunc
	ClearHistoryHandler http.HandlerFunc
	LoadHistoryHandler  http.HandlerFunc
	HistoryCSVHandler   http.HandlerFunc

	ExportCSVHandler http.HandlerFunc
	ImportHandler    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", deps.HealthHandler)

	// Session-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Session)
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Route("/api/v1/prospector", func(r chi.Router) {
			r.Post("/search", deps.SearchHandler)
			r.Post("/jobs/{jobID}/stop", deps.StopHandler)
			r.Get("/jobs/{jobID}/results", deps.JobResultsHandler)
			r.Post("/acknowledge", deps.AcknowledgeHandler)
			r.Delete("/message", deps.DismissHandler)

			r.Get("/history", deps.HistoryHandler)
			r.Delete("/history", deps.ClearHistoryHandler)
			r.Post("/history/{searchID}/load", deps.LoadHistoryHandler)
			r.Get("/history/{searchID}/csv", deps.HistoryCSVHandler)

			r.Get("/export/csv", deps.ExportCSVHandler)
			r.Post("/import", deps.ImportHandler)
		})
	})

	return r
}
