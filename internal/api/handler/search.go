// Package handler contains the HTTP handlers for the prospector API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/coldreach/prospector/internal/api/middleware"
	"github.com/coldreach/prospector/internal/api/response"
	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/pkg/models"
)

// Sessions hands out per-session orchestrators. Implemented by
// prospector.Registry.
type Sessions interface {
	Get(token string) *prospector.Orchestrator
}

// jobView is the polling payload the dashboard renders from.
type jobView struct {
	JobID    string                `json:"job_id"`
	Status   string                `json:"status"`
	Progress string                `json:"progress"`
	State    string                `json:"state"`
	Message  string                `json:"message,omitempty"`
	Results  []models.ResultRecord `json:"results"`
	Total    int                   `json:"total"`
}

// NewSearchHandler returns an http.HandlerFunc for POST /api/v1/prospector/search.
func NewSearchHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		var req struct {
			Query    string `json:"query"`
			Location string `json:"location"`
			Limit    int    `json:"limit"`
			Emails   bool   `json:"extract_emails"`
			Phone    bool   `json:"extract_phone"`
			Website  bool   `json:"extract_website"`
			Reviews  bool   `json:"extract_reviews"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Limit == 0 {
			req.Limit = 20
		}

		job, err := sessions.Get(session).Search(r.Context(), prospector.SearchParams{
			Query:    req.Query,
			Location: req.Location,
			Limit:    req.Limit,
			Options: models.ExtractOptions{
				Emails:  req.Emails,
				Phone:   req.Phone,
				Website: req.Website,
				Reviews: req.Reviews,
			},
		})
		if err != nil {
			var verr *prospector.ValidationError
			switch {
			case errors.As(err, &verr):
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", verr.Error(), nil)
			case errors.Is(err, prospector.ErrSubmission):
				response.Error(w, http.StatusBadGateway, "SUBMISSION_FAILED", err.Error(), nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start search", nil)
			}
			return
		}

		response.Accepted(w, map[string]any{
			"job_id": job.ID,
			"status": job.Status,
		})
	}
}

// NewStopHandler returns an http.HandlerFunc for POST /api/v1/prospector/jobs/{jobID}/stop.
func NewStopHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		jobID := chi.URLParam(r, "jobID")
		o := sessions.Get(session)

		if err := o.Stop(r.Context(), jobID); err != nil {
			if errors.Is(err, prospector.ErrNoActiveJob) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "No active job with that ID", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to stop job", nil)
			return
		}

		response.JSON(w, map[string]any{
			"status":         "stopping",
			"results_so_far": o.Results().Len(),
		})
	}
}

// NewJobResultsHandler returns an http.HandlerFunc for GET /api/v1/prospector/jobs/{jobID}/results.
func NewJobResultsHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		jobID := chi.URLParam(r, "jobID")
		o := sessions.Get(session)

		snap := o.Status()
		if snap.Job == nil || snap.Job.ID != jobID {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
			return
		}

		results := o.Results().Snapshot()
		response.JSON(w, jobView{
			JobID:    snap.Job.ID,
			Status:   snap.Job.Status,
			Progress: snap.Job.Progress,
			State:    string(snap.State),
			Message:  snap.Message,
			Results:  results,
			Total:    len(results),
		})
	}
}

// NewAcknowledgeHandler returns an http.HandlerFunc for POST /api/v1/prospector/acknowledge.
// The dashboard calls it once it has rendered a terminal outcome, which
// drains the orchestrator back to idle.
func NewAcknowledgeHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		snap, ok := sessions.Get(session).Acknowledge()
		if !ok {
			response.Error(w, http.StatusConflict, "NO_TERMINAL_JOB", "No terminal outcome to acknowledge", nil)
			return
		}

		response.JSON(w, map[string]any{
			"state":   string(snap.State),
			"message": snap.Message,
		})
	}
}

// NewDismissMessageHandler returns an http.HandlerFunc for DELETE /api/v1/prospector/message.
func NewDismissMessageHandler(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.GetSession(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing session", nil)
			return
		}

		sessions.Get(session).DismissMessage()
		response.JSON(w, map[string]any{"dismissed": true})
	}
}
