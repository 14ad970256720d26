package prospector

import (
	"strings"

	"github.com/coldreach/prospector/internal/engine"
	"github.com/coldreach/prospector/pkg/models"
)

// SearchParams are the raw user-entered search parameters.
type SearchParams struct {
	Query    string
	Location string
	Limit    int
	Options  models.ExtractOptions
}

// BuildRequest validates search parameters and packages them into a
// job-submission request. The engine clamps the limit on its side; only
// locally-detectable problems are rejected here.
func BuildRequest(p SearchParams) (engine.SubmitRequest, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return engine.SubmitRequest{}, &ValidationError{Field: "query", Reason: "is required"}
	}

	location := strings.TrimSpace(p.Location)
	if location == "" {
		return engine.SubmitRequest{}, &ValidationError{Field: "location", Reason: "is required"}
	}

	if p.Limit <= 0 {
		return engine.SubmitRequest{}, &ValidationError{Field: "limit", Reason: "must be positive"}
	}

	return engine.SubmitRequest{
		Query:    query,
		Location: location,
		Limit:    p.Limit,
		Emails:   p.Options.Emails,
		Phone:    p.Options.Phone,
		Website:  p.Options.Website,
		Reviews:  p.Options.Reviews,
	}, nil
}
