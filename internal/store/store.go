package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/coldreach/prospector/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// HistoryTotals are aggregate counters over everything a session has ever
// scraped, not just the entries the list returns.
type HistoryTotals struct {
	Searches int `json:"total_searches"`
	Leads    int `json:"total_leads"`
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	InsertSearch(ctx context.Context, entry *models.HistoryEntry) error
	ListSearches(ctx context.Context, owner string, limit int) ([]*models.HistoryEntry, error)
	GetSearch(ctx context.Context, id uuid.UUID, owner string) (*models.HistoryEntry, error)
	ClearSearches(ctx context.Context, owner string) error
	SearchTotals(ctx context.Context, owner string) (HistoryTotals, error)
}
