package handler

import (
	"errors"
	"net/http"

	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/api/response"
	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/internal/leads"
)

// NewImportHandler returns an http.HandlerFunc for POST /api/v1/prospector/import.
// It forwards the session's current result snapshot to the lead service.
// The snapshot itself is never mutated, so a failed or partial import is
// safe to retry.
func NewImportHandler(sessions Sessions, lc leads.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		snapshot := sessions.Get(session).Results().Snapshot()
		if len(snapshot) == 0 {
			response.Error(w, http.StatusBadRequest, "NO_RESULTS", "No results to import", nil)
			return
		}

		result, err := lc.Import(r.Context(), engine.Session{Token: session}, snapshot)
		if err != nil {
			if errors.Is(err, leads.ErrLeadsUnreachable) {
				response.Error(w, http.StatusBadGateway, "LEADS_UNAVAILABLE", "Lead service unreachable", nil)
				return
			}
			response.Error(w, http.StatusBadGateway, "IMPORT_FAILED", err.Error(), nil)
			return
		}

		response.JSON(w, result)
	}
}
