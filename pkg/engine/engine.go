// Package engine exposes the parts aggregation and margin ranking pipeline
// as a single facade: fan-out search, normalization, pricing enrichment, and
// filter/sort in one call.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/torquepoint/parts-engine/internal/cache"
	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/diagnose"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/pricing"
	"github.com/torquepoint/parts-engine/internal/ranking"
	"github.com/torquepoint/parts-engine/internal/search"
	"github.com/torquepoint/parts-engine/internal/smartfilter"
)

// RuleSource supplies a shop's pricing rules, assumed priority-sortable.
type RuleSource interface {
	ListByShop(ctx context.Context, shopID string) ([]pricing.Rule, error)
}

// StaticRules is a RuleSource backed by a fixed rule list, for the CLI and
// tests.
type StaticRules []pricing.Rule

// ListByShop returns the fixed rules regardless of shop.
func (r StaticRules) ListByShop(ctx context.Context, shopID string) ([]pricing.Rule, error) {
	return r, nil
}

// Deps holds the engine's collaborators. Provider is required; the rest may
// be nil and degrade to no-ops.
type Deps struct {
	Logger    *observability.Logger
	Provider  search.Provider
	Rules     RuleSource
	History   search.HistoryRecorder
	Cache     cache.Client
	Diagnoser diagnose.Diagnoser
}

// Config holds engine tuning.
type Config struct {
	Orchestrator search.OrchestratorConfig
	ResultCache  search.ResultCacheConfig
}

// Engine runs the aggregation pipeline. All methods are safe for concurrent
// use; the engine holds no per-request state.
type Engine struct {
	logger       *observability.Logger
	orchestrator *search.Orchestrator
	rules        RuleSource
	resultCache  *search.ResultCache
	diagnoser    diagnose.Diagnoser
	config       Config
}

// New creates an engine from its collaborators.
func New(deps Deps, cfg Config) (*Engine, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("search provider is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	var resultCache *search.ResultCache
	if deps.Cache != nil {
		resultCache = search.NewResultCache(deps.Cache, logger, cfg.ResultCache)
	}

	return &Engine{
		logger:       logger,
		orchestrator: search.NewOrchestrator(logger, deps.Provider, deps.History, cfg.Orchestrator),
		rules:        deps.Rules,
		resultCache:  resultCache,
		diagnoser:    deps.Diagnoser,
		config:       cfg,
	}, nil
}

// SearchRequest is one ranking pass over one or many part queries.
type SearchRequest struct {
	ShopID  string
	Queries []search.Query
	Vehicle search.VehicleContext
	Filters ranking.FilterCriteria
	Sort    ranking.SortKey
}

// SearchResponse is the ordered, grouped result set.
type SearchResponse struct {
	Results   []pricing.EnrichedPart
	Groups    []search.QueryGroup
	TopPickID string
	LatencyMs int64
	FromCache bool
}

// Search executes the full pipeline: fan-out, normalize, price, filter, sort.
// Individual query failures surface on the groups, never as an error; the
// only returned error is the caller's own cancellation.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	results, groups, fromCache, err := e.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	rules := e.loadRules(ctx, req.ShopID)

	enriched := make([]pricing.EnrichedPart, 0, len(results))
	for _, part := range results {
		enriched = append(enriched, enrich(part, rules))
	}

	ordered := ranking.Apply(enriched, req.Filters, req.Sort)

	return &SearchResponse{
		Results:   ordered,
		Groups:    groups,
		TopPickID: ranking.TopPick(ordered, req.Sort),
		LatencyMs: time.Since(start).Milliseconds(),
		FromCache: fromCache,
	}, nil
}

// SearchSymptom runs a diagnosed search: the symptom is mapped to part
// queries by the diagnosis collaborator, then searched as a grouped
// multi-part request.
func (e *Engine) SearchSymptom(ctx context.Context, req SearchRequest, symptom string) (*SearchResponse, error) {
	if e.diagnoser == nil {
		return nil, fmt.Errorf("diagnosis service not configured")
	}

	parts, err := e.diagnoser.Diagnose(ctx, symptom, req.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("diagnose symptom: %w", err)
	}

	queries := make([]search.Query, 0, len(parts))
	for _, p := range parts {
		queries = append(queries, search.Query{Text: p.Query, Label: p.Label})
	}
	req.Queries = queries

	return e.Search(ctx, req)
}

// ParseFilter converts a free-text filter phrase into filter criteria using
// the built-in brand and vendor vocabularies.
func (e *Engine) ParseFilter(text string) ranking.FilterCriteria {
	return smartfilter.Parse(text, catalog.KnownBrands(), catalog.KnownVendors())
}

// PricePreview resolves and applies the shop's rules to a single cost, for
// rule administration previews.
func (e *Engine) PricePreview(ctx context.Context, shopID, brand, category string, cost float64) (pricing.Rule, pricing.Breakdown) {
	rules := e.loadRules(ctx, shopID)
	rule := pricing.Resolve(brand, category, rules)
	return rule, pricing.Price(cost, rule)
}

// fetch returns normalized pre-filter results, from the cache when possible.
func (e *Engine) fetch(ctx context.Context, req SearchRequest) ([]catalog.PartResult, []search.QueryGroup, bool, error) {
	var key string
	if e.resultCache != nil {
		key = e.resultCache.CacheKey(req.Queries, req.Vehicle, e.config.Orchestrator.Condition, e.config.Orchestrator.Limit)
		if results, groups, ok := e.resultCache.Get(ctx, key); ok {
			return results, groups, true, nil
		}
	}

	results, groups, err := e.orchestrator.Search(ctx, req.Queries, req.Vehicle)
	if err != nil {
		return nil, nil, false, err
	}

	if e.resultCache != nil {
		_ = e.resultCache.Set(ctx, key, results, groups)
	}

	return results, groups, false, nil
}

// loadRules fetches the shop's rules; a load failure degrades to the
// built-in fallback rule rather than failing the ranking pass.
func (e *Engine) loadRules(ctx context.Context, shopID string) []pricing.Rule {
	if e.rules == nil {
		return nil
	}

	rules, err := e.rules.ListByShop(ctx, shopID)
	if err != nil {
		e.logger.Warn().Err(err).Str("shop_id", shopID).Msg("Failed to load pricing rules, using fallback")
		return nil
	}
	return rules
}

// enrich attaches resolved pricing to one normalized result.
func enrich(part catalog.PartResult, rules []pricing.Rule) pricing.EnrichedPart {
	rule := pricing.Resolve(part.Brand, part.Category, rules)
	breakdown := pricing.Price(part.Cost, rule)

	return pricing.EnrichedPart{
		PartResult: part,
		ListPrice:  breakdown.ListPrice,
		Margin:     breakdown.Margin,
		MarginPct:  breakdown.MarginPct,
		Applied:    rule.Applied(),
	}
}
