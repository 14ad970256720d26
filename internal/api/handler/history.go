package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/api/response"
	"github.com/coldreach/prospector/internal/history"
	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/internal/store"
	"github.com/coldreach/prospector/pkg/models"
)

// History is the slice of history.Service the handlers depend on.
type History interface {
	Refresh(ctx context.Context, owner string) (*history.View, error)
	Clear(ctx context.Context, owner string) error
	Load(ctx context.Context, owner string, id uuid.UUID, dst *prospector.ResultStore) (*models.HistoryEntry, error)
	Entry(ctx context.Context, owner string, id uuid.UUID) (*models.HistoryEntry, error)
}

// NewHistoryHandler returns an http.HandlerFunc for GET /api/v1/prospector/history.
func NewHistoryHandler(svc History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		view, err := svc.Refresh(r.Context(), session)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load history", nil)
			return
		}

		response.JSON(w, view)
	}
}

// NewClearHistoryHandler returns an http.HandlerFunc for DELETE /api/v1/prospector/history.
func NewClearHistoryHandler(svc History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		if err := svc.Clear(r.Context(), session); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear history", nil)
			return
		}

		response.JSON(w, map[string]any{"cleared": true})
	}
}

// NewLoadHistoryHandler returns an http.HandlerFunc for POST /api/v1/prospector/history/{searchID}/load.
// It replays a stored snapshot into the session's result store without
// re-running any job.
func NewLoadHistoryHandler(svc History, sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		searchID, err := uuid.Parse(chi.URLParam(r, "searchID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "searchID must be a valid UUID", nil)
			return
		}

		entry, err := svc.Load(r.Context(), session, searchID, sessions.Get(session).Results())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "SEARCH_NOT_FOUND", "Search not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load search", nil)
			return
		}

		response.JSON(w, map[string]any{
			"loaded":   entry.Total,
			"query":    entry.Query,
			"location": entry.Location,
		})
	}
}

// NewHistoryCSVHandler returns an http.HandlerFunc for GET /api/v1/prospector/history/{searchID}/csv.
func NewHistoryCSVHandler(svc History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		searchID, err := uuid.Parse(chi.URLParam(r, "searchID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "searchID must be a valid UUID", nil)
			return
		}

		entry, err := svc.Entry(r.Context(), session, searchID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "SEARCH_NOT_FOUND", "Search not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load search", nil)
			return
		}

		content := prospector.CSV(entry.Results)
		if content == "" {
			response.Error(w, http.StatusNotFound, "NO_RESULTS", "No results to export", nil)
			return
		}

		filename := fmt.Sprintf("leads_%s_%s.csv", safeFilename(entry.Query), safeFilename(entry.Location))
		response.CSV(w, filename, content)
	}
}

// safeFilename reduces user-entered text to a Content-Disposition-safe
// token: quotes, separators, and control characters never reach the
// header.
func safeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == ',' || r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}
