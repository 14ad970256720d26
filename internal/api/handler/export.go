package handler

import (
	"net/http"

	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/api/response"
	"github.com/coldreach/prospector/internal/prospector"
)

// NewExportCSVHandler returns an http.HandlerFunc for GET /api/v1/prospector/export/csv.
// It serializes the session's current result snapshot; an empty snapshot
// skips the export.
func NewExportCSVHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		content := prospector.CSV(sessions.Get(session).Results().Snapshot())
		if content == "" {
			response.Error(w, http.StatusBadRequest, "NO_RESULTS", "No results to export", nil)
			return
		}

		response.CSV(w, "leads_export.csv", content)
	}
}
