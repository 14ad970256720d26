package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coldreach/prospector/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) InsertSearch(ctx context.Context, entry *models.HistoryEntry) error {
	snapshot, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("marshal result snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO searches (id, owner, query, location, total, results, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Owner, entry.Query, entry.Location, entry.Total, snapshot, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSearches(ctx context.Context, owner string, limit int) ([]*models.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner, query, location, total, results, created_at
		 FROM searches WHERE owner = $1 ORDER BY created_at DESC LIMIT $2`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) GetSearch(ctx context.Context, id uuid.UUID, owner string) (*models.HistoryEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner, query, location, total, results, created_at
		 FROM searches WHERE id = $1 AND owner = $2`, id, owner)

	entry, err := scanSearch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *PostgresStore) ClearSearches(ctx context.Context, owner string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM searches WHERE owner = $1`, owner)
	if err != nil {
		return fmt.Errorf("clear searches: %w", err)
	}
	return nil
}

func (s *PostgresStore) SearchTotals(ctx context.Context, owner string) (HistoryTotals, error) {
	var totals HistoryTotals
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0) FROM searches WHERE owner = $1`, owner,
	).Scan(&totals.Searches, &totals.Leads)
	if err != nil {
		return HistoryTotals{}, fmt.Errorf("search totals: %w", err)
	}
	return totals, nil
}

func scanSearch(row pgx.Row) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	var snapshot []byte
	if err := row.Scan(&entry.ID, &entry.Owner, &entry.Query, &entry.Location,
		&entry.Total, &snapshot, &entry.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan search: %w", err)
	}
	if err := json.Unmarshal(snapshot, &entry.Results); err != nil {
		return nil, fmt.Errorf("unmarshal result snapshot: %w", err)
	}
	return &entry, nil
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
