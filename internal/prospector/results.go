package prospector

import (
	"sync"

	"github.com/coldreach/prospector/pkg/models"
)

// ResultStore holds the current authoritative result snapshot for the
// active or most-recently-completed job. Each poll response replaces the
// snapshot wholesale; the store never appends. Safe for concurrent use.
type ResultStore struct {
	mu      sync.RWMutex
	records []models.ResultRecord
}

// NewResultStore creates an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Replace swaps in a new snapshot. The input is copied, so callers may
// keep mutating their slice afterwards.
func (s *ResultStore) Replace(records []models.ResultRecord) {
	snapshot := models.CloneResults(records)
	s.mu.Lock()
	s.records = snapshot
	s.mu.Unlock()
}

// Snapshot returns a copy of the current records.
func (s *ResultStore) Snapshot() []models.ResultRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneResults(s.records)
}

// Len returns the number of records in the current snapshot.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
