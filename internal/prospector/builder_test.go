package prospector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/pkg/models"
)

func TestBuildRequest_Valid(t *testing.T) {
	req, err := prospector.BuildRequest(prospector.SearchParams{
		Query:    "  coffee shops ",
		Location: " Portland, OR ",
		Limit:    50,
		Options:  models.ExtractOptions{Emails: true, Reviews: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "coffee shops", req.Query)
	assert.Equal(t, "Portland, OR", req.Location)
	assert.Equal(t, 50, req.Limit)
	assert.True(t, req.Emails)
	assert.False(t, req.Phone)
	assert.False(t, req.Website)
	assert.True(t, req.Reviews)
}

func TestBuildRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params prospector.SearchParams
		field  string
	}{
		{"empty query", prospector.SearchParams{Query: "", Location: "Austin", Limit: 10}, "query"},
		{"whitespace query", prospector.SearchParams{Query: "   \t", Location: "Austin", Limit: 10}, "query"},
		{"empty location", prospector.SearchParams{Query: "plumber", Location: "", Limit: 10}, "location"},
		{"whitespace location", prospector.SearchParams{Query: "plumber", Location: "  ", Limit: 10}, "location"},
		{"zero limit", prospector.SearchParams{Query: "plumber", Location: "Austin", Limit: 0}, "limit"},
		{"negative limit", prospector.SearchParams{Query: "plumber", Location: "Austin", Limit: -5}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prospector.BuildRequest(tt.params)
			var verr *prospector.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
