package storage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/torquepoint/parts-engine/internal/search"
)

// HistoryStore persists settled searches to SQLite. It implements
// search.HistoryRecorder.
type HistoryStore struct {
	db DB
}

// NewHistoryStore creates a history store over an open history database.
func NewHistoryStore(db DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record inserts one history row.
func (s *HistoryStore) Record(ctx context.Context, entry search.HistoryEntry) error {
	searchedAt := entry.SearchAt
	if searchedAt.IsZero() {
		searchedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, queries, vehicle_year, vehicle_make,
			vehicle_model, vehicle_vin, total_results, failed_queries, searched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		strings.Join(entry.Queries, "\n"),
		entry.Vehicle.Year,
		entry.Vehicle.Make,
		entry.Vehicle.Model,
		entry.Vehicle.VIN,
		entry.TotalResults,
		entry.FailedQueries,
		searchedAt,
	)
	return err
}

// HistoryRow is one persisted search.
type HistoryRow struct {
	ID            string
	Queries       []string
	Vehicle       search.VehicleContext
	TotalResults  int
	FailedQueries int
	SearchedAt    time.Time
}

// Recent returns the most recent searches, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryRow, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, queries, vehicle_year, vehicle_make, vehicle_model,
			vehicle_vin, total_results, failed_queries, searched_at
		FROM search_history
		ORDER BY searched_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var row HistoryRow
		var queries string
		if err := rows.Scan(
			&row.ID, &queries, &row.Vehicle.Year, &row.Vehicle.Make,
			&row.Vehicle.Model, &row.Vehicle.VIN, &row.TotalResults,
			&row.FailedQueries, &row.SearchedAt,
		); err != nil {
			return nil, err
		}
		if queries != "" {
			row.Queries = strings.Split(queries, "\n")
		}
		history = append(history, row)
	}
	return history, rows.Err()
}
