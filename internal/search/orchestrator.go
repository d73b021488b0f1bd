package search

import (
	"context"
	"sync"
	"time"

	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/observability"
)

// Query is one part query within a possibly multi-part request.
type Query struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"`
}

// QueryGroup records the outcome of one query's fan-out call. One group per
// distinct query; never mutated after its call settles.
type QueryGroup struct {
	Label       string `json:"label"`
	Query       string `json:"query"`
	ResultCount int    `json:"resultCount"`
	Error       string `json:"error,omitempty"`
}

// OrchestratorConfig holds fan-out settings.
type OrchestratorConfig struct {
	MaxWorkers      int
	PerQueryTimeout time.Duration
	Limit           int
	Condition       string
}

// Orchestrator executes one or many part queries concurrently against the
// search provider, tolerating per-query failure. A request succeeds as long
// as the fan-out itself completes, even if every individual query failed;
// callers inspect QueryGroup.Error per group.
type Orchestrator struct {
	logger     *observability.Logger
	provider   Provider
	normalizer *catalog.Normalizer
	history    HistoryRecorder
	config     OrchestratorConfig
}

// NewOrchestrator creates a fan-out orchestrator. history may be nil.
func NewOrchestrator(logger *observability.Logger, provider Provider, history HistoryRecorder, cfg OrchestratorConfig) *Orchestrator {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.PerQueryTimeout <= 0 {
		cfg.PerQueryTimeout = 15 * time.Second
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 20
	}
	if cfg.Condition == "" {
		cfg.Condition = "all"
	}

	return &Orchestrator{
		logger:     logger,
		provider:   provider,
		normalizer: catalog.NewNormalizer(),
		history:    history,
		config:     cfg,
	}
}

// groupOutcome is the settled state of one query's call.
type groupOutcome struct {
	results []catalog.PartResult
	group   QueryGroup
}

// Search fans out the queries, waits for all of them to settle, and merges
// the outcomes in query order. A single-query request runs the same path with
// one group and no distinguishing group label. The per-query timeout bounds
// each call independently; a slow query degrades to an error entry without
// blocking or failing its siblings. The only error returned is the caller's
// own cancellation.
func (o *Orchestrator) Search(ctx context.Context, queries []Query, vehicle VehicleContext) ([]catalog.PartResult, []QueryGroup, error) {
	if len(queries) == 0 {
		return []catalog.PartResult{}, []QueryGroup{}, nil
	}

	multi := len(queries) > 1
	outcomes := make([]groupOutcome, len(queries))

	type workItem struct {
		index int
		query Query
	}

	workChan := make(chan workItem, len(queries))
	for i, q := range queries {
		workChan <- workItem{index: i, query: q}
	}
	close(workChan)

	var wg sync.WaitGroup
	var mu sync.Mutex

	workers := o.config.MaxWorkers
	if workers > len(queries) {
		workers = len(queries)
	}

	start := time.Now()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workChan {
				outcome := o.runQuery(ctx, item.query, vehicle, multi)

				mu.Lock()
				outcomes[item.index] = outcome
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var results []catalog.PartResult
	groups := make([]QueryGroup, 0, len(queries))
	for _, outcome := range outcomes {
		results = append(results, outcome.results...)
		groups = append(groups, outcome.group)
	}

	o.logger.Debug().
		Int("queries", len(queries)).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Fan-out settled")

	o.recordHistory(ctx, queries, vehicle, groups)

	return results, groups, nil
}

// runQuery issues one provider call inside its own cancellation scope and
// normalizes the hits. Failures are captured on the group, never propagated.
func (o *Orchestrator) runQuery(ctx context.Context, query Query, vehicle VehicleContext, multi bool) groupOutcome {
	queryCtx, cancel := context.WithTimeout(ctx, o.config.PerQueryTimeout)
	defer cancel()

	label := ""
	if multi {
		label = query.Label
		if label == "" {
			label = query.Text
		}
	}

	group := QueryGroup{Label: label, Query: query.Text}

	hits, err := o.provider.Search(queryCtx, ProviderRequest{
		Query:     query.Text,
		Vehicle:   vehicle,
		Limit:     o.config.Limit,
		Condition: o.config.Condition,
	})
	if err != nil {
		o.logger.Warn().Err(err).Str("query", query.Text).Msg("Provider call failed")
		group.Error = err.Error()
		return groupOutcome{group: group}
	}

	results := make([]catalog.PartResult, 0, len(hits))
	for _, hit := range hits {
		if result, ok := o.normalizer.Normalize(hit, label); ok {
			results = append(results, result)
		}
	}

	group.ResultCount = len(results)
	return groupOutcome{results: results, group: group}
}

// recordHistory invokes the fire-and-forget history port after settlement.
// Recorder errors are logged, never surfaced.
func (o *Orchestrator) recordHistory(ctx context.Context, queries []Query, vehicle VehicleContext, groups []QueryGroup) {
	if o.history == nil {
		return
	}

	entry := HistoryEntry{
		Vehicle:  vehicle,
		SearchAt: time.Now(),
	}
	for _, q := range queries {
		entry.Queries = append(entry.Queries, q.Text)
	}
	for _, g := range groups {
		entry.TotalResults += g.ResultCount
		if g.Error != "" {
			entry.FailedQueries++
		}
	}

	if err := o.history.Record(ctx, entry); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to record search history")
	}
}
