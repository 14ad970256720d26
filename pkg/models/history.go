package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is a completed search preserved after job termination.
// The stored result snapshot is immutable; loading it back into a live
// result store always copies.
type HistoryEntry struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	Owner     string         `db:"owner"      json:"-"`
	Query     string         `db:"query"      json:"query"`
	Location  string         `db:"location"   json:"location"`
	Total     int            `db:"total"      json:"total"`
	Results   []ResultRecord `db:"results"    json:"results"`
	CreatedAt time.Time      `db:"created_at" json:"timestamp"`
}
