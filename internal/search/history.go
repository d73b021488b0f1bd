package search

import (
	"context"
	"time"
)

// HistoryEntry summarizes one settled search for the history log.
type HistoryEntry struct {
	Queries       []string
	Vehicle       VehicleContext
	TotalResults  int
	FailedQueries int
	SearchAt      time.Time
}

// HistoryRecorder is the side-effect port invoked once after fan-out
// settlement. Implementations must be safe for concurrent use; errors are
// logged by the orchestrator and never affect the search outcome.
type HistoryRecorder interface {
	Record(ctx context.Context, entry HistoryEntry) error
}

// NopHistory is a HistoryRecorder that discards entries, keeping the core
// pipeline testable without a store.
type NopHistory struct{}

// Record discards the entry.
func (NopHistory) Record(ctx context.Context, entry HistoryEntry) error {
	return nil
}
