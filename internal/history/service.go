// Package history maintains the per-session record of past completed
// searches: listing with aggregate counters, clearing, and replaying a
// stored snapshot into a live result store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coldreach/prospector/internal/cache"
	"github.com/coldreach/prospector/internal/prospector"
	"github.com/coldreach/prospector/internal/store"
	"github.com/coldreach/prospector/pkg/models"
)

// View is the history panel payload: the most recent searches plus
// aggregate counters over everything the session has ever scraped.
type View struct {
	Searches      []*models.HistoryEntry `json:"searches"`
	TotalSearches int                    `json:"total_searches"`
	TotalLeads    int                    `json:"total_leads"`
}

// Service implements the history store on Postgres with a short-lived
// Redis cache in front of the list.
type Service struct {
	store     store.Store
	cache     cache.Cache
	listLimit int
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewService creates a history service. The cache may be nil; listing is
// then always uncached.
func NewService(st store.Store, c cache.Cache, listLimit int, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     st,
		cache:     c,
		listLimit: listLimit,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Refresh re-fetches the session's past searches and aggregate counters.
func (s *Service) Refresh(ctx context.Context, owner string) (*View, error) {
	if view, ok := s.cached(ctx, owner); ok {
		return view, nil
	}

	entries, err := s.store.ListSearches(ctx, owner, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}

	totals, err := s.store.SearchTotals(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("history totals: %w", err)
	}

	view := &View{
		Searches:      entries,
		TotalSearches: totals.Searches,
		TotalLeads:    totals.Leads,
	}
	s.storeCached(ctx, owner, view)
	return view, nil
}

// Record persists a completed search and invalidates the cached list.
func (s *Service) Record(ctx context.Context, entry *models.HistoryEntry) error {
	if err := s.store.InsertSearch(ctx, entry); err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	s.invalidate(ctx, entry.Owner)
	return nil
}

// Clear deletes all of the session's history.
func (s *Service) Clear(ctx context.Context, owner string) error {
	if err := s.store.ClearSearches(ctx, owner); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.invalidate(ctx, owner)
	return nil
}

// Load copies a stored snapshot into the given result store. It is a pure
// replay path: no job is re-run, job state is untouched, and the stored
// snapshot is copied, never aliased.
func (s *Service) Load(ctx context.Context, owner string, id uuid.UUID, dst *prospector.ResultStore) (*models.HistoryEntry, error) {
	entry, err := s.Entry(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	dst.Replace(entry.Results)
	return entry, nil
}

// Entry fetches a single history entry.
func (s *Service) Entry(ctx context.Context, owner string, id uuid.UUID) (*models.HistoryEntry, error) {
	entry, err := s.store.GetSearch(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) cached(ctx context.Context, owner string) (*View, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, cache.HistoryKey(owner))
	if err != nil || !ok {
		return nil, false
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (s *Service) storeCached(ctx context.Context, owner string, view *View) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.HistoryKey(owner), raw, s.cacheTTL); err != nil {
		s.logger.Warn("cache history view", "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context, owner string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.HistoryKey(owner)); err != nil {
		s.logger.Warn("invalidate history cache", "error", err)
	}
}

// Compile-time check that Service satisfies the orchestrator's recorder.
var _ prospector.HistoryRecorder = (*Service)(nil)
