package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torquepoint/parts-engine/internal/cache"
	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/diagnose"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/pricing"
	"github.com/torquepoint/parts-engine/internal/ranking"
	"github.com/torquepoint/parts-engine/internal/search"
)

type stubProvider struct {
	mu    sync.Mutex
	hits  map[string][]catalog.UpstreamHit
	errs  map[string]error
	calls int
}

func (s *stubProvider) Search(ctx context.Context, req search.ProviderRequest) ([]catalog.UpstreamHit, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err, ok := s.errs[req.Query]; ok {
		return nil, err
	}
	return s.hits[req.Query], nil
}

func price(v float64) *float64 { return &v }

func padHit(title string, cost float64, relevance int) catalog.UpstreamHit {
	return catalog.UpstreamHit{Title: title, Price: price(cost), Relevance: &relevance}
}

func newTestEngine(t *testing.T, provider search.Provider, rules RuleSource, cacheClient cache.Client) *Engine {
	t.Helper()
	eng, err := New(Deps{
		Logger:   observability.Nop(),
		Provider: provider,
		Rules:    rules,
		Cache:    cacheClient,
	}, Config{
		ResultCache: search.ResultCacheConfig{Enabled: cacheClient != nil},
	})
	require.NoError(t, err)
	return eng
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New(Deps{}, Config{})
	assert.Error(t, err)
}

func TestSearch_EnrichesWithShopRules(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {padHit("Bosch QuietCast pads", 20, 80)},
	}}
	rules := StaticRules{
		{RuleType: pricing.RuleGlobal, MarkupType: pricing.MarkupPercentage, MarkupValue: 50},
	}
	eng := newTestEngine(t, provider, rules, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
		Sort:    ranking.SortBestMargin,
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	got := resp.Results[0]
	assert.Equal(t, 30.00, got.ListPrice) // 20 * 1.50
	assert.Equal(t, 10.00, got.Margin)
	assert.Equal(t, pricing.RuleGlobal, got.Applied.Type)
	assert.Equal(t, 50.0, got.Applied.Value)
}

func TestSearch_NoRuleSourceUsesBuiltInFallback(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {padHit("pads", 10, 0)},
	}}
	eng := newTestEngine(t, provider, nil, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 14.00, resp.Results[0].ListPrice) // 10 * 1.40 fallback
}

func TestSearch_FailingRuleSourceDegradesToFallback(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {padHit("pads", 10, 0)},
	}}
	eng := newTestEngine(t, provider, failingRules{}, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 14.00, resp.Results[0].ListPrice)
}

type failingRules struct{}

func (failingRules) ListByShop(ctx context.Context, shopID string) ([]pricing.Rule, error) {
	return nil, errors.New("db down")
}

func TestSearch_QueryFailureSurfacesOnGroupOnly(t *testing.T) {
	provider := &stubProvider{
		hits: map[string][]catalog.UpstreamHit{"brake pads": {padHit("pads", 10, 0)}},
		errs: map[string]error{"rotors": errors.New("upstream down")},
	}
	eng := newTestEngine(t, provider, nil, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}, {Text: "rotors"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)
	assert.Empty(t, resp.Groups[0].Error)
	assert.Equal(t, "upstream down", resp.Groups[1].Error)
	assert.Len(t, resp.Results, 1)
}

func TestSearch_TopPickOnlyForBestMatch(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {
			padHit("low relevance pads", 10, 20),
			padHit("high relevance pads", 10, 90),
		},
	}}
	eng := newTestEngine(t, provider, nil, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
		Sort:    ranking.SortBestMatch,
	})
	require.NoError(t, err)
	assert.Equal(t, resp.Results[0].ID, resp.TopPickID)
	assert.Equal(t, 90, resp.Results[0].RelevanceScore)

	resp, err = eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
		Sort:    ranking.SortBestMargin,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.TopPickID)
}

func TestSearch_SecondIdenticalRequestIsServedFromCache(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {padHit("pads", 10, 0)},
	}}
	eng := newTestEngine(t, provider, nil, cache.NewMemoryClient(100))

	req := SearchRequest{Queries: []search.Query{{Text: "brake pads"}}}

	first, err := eng.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := eng.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, provider.calls)
	assert.Len(t, second.Results, 1)
}

func TestSearch_ErroredGroupsAreNotCached(t *testing.T) {
	provider := &stubProvider{errs: map[string]error{"rotors": errors.New("boom")}}
	eng := newTestEngine(t, provider, nil, cache.NewMemoryClient(100))

	req := SearchRequest{Queries: []search.Query{{Text: "rotors"}}}

	_, err := eng.Search(context.Background(), req)
	require.NoError(t, err)

	// The retry hits the provider again instead of replaying the failure
	_, err = eng.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestSearch_FiltersApplyAfterPricing(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads": {
			padHit("Akebono ceramic pads", 30, 0),
			padHit("organic pads", 25, 0),
		},
	}}
	eng := newTestEngine(t, provider, nil, nil)

	resp, err := eng.Search(context.Background(), SearchRequest{
		Queries: []search.Query{{Text: "brake pads"}},
		Filters: ranking.FilterCriteria{Materials: []string{"Ceramic"}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Ceramic", resp.Results[0].Material)
}

func TestSearchSymptom_WithoutDiagnoserFails(t *testing.T) {
	provider := &stubProvider{}
	eng := newTestEngine(t, provider, nil, nil)

	_, err := eng.SearchSymptom(context.Background(), SearchRequest{}, "grinding noise")
	assert.Error(t, err)
}

type stubDiagnoser struct {
	parts []diagnose.PartQuery
	err   error
}

func (s *stubDiagnoser) Diagnose(ctx context.Context, symptom string, vehicle search.VehicleContext) ([]diagnose.PartQuery, error) {
	return s.parts, s.err
}

func TestSearchSymptom_SearchesDiagnosedQueriesGrouped(t *testing.T) {
	provider := &stubProvider{hits: map[string][]catalog.UpstreamHit{
		"brake pads front": {padHit("pads", 20, 0)},
		"brake rotor":      {padHit("rotor", 45, 0)},
	}}
	eng, err := New(Deps{
		Logger:   observability.Nop(),
		Provider: provider,
		Diagnoser: &stubDiagnoser{parts: []diagnose.PartQuery{
			{Query: "brake pads front", Label: "Brake Pads"},
			{Query: "brake rotor", Label: "Rotors"},
		}},
	}, Config{})
	require.NoError(t, err)

	resp, err := eng.SearchSymptom(context.Background(), SearchRequest{}, "grinding when braking")

	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "Brake Pads", resp.Groups[0].Label)
	assert.Equal(t, "Rotors", resp.Groups[1].Label)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Brake Pads", resp.Results[0].GroupLabel)
	assert.Equal(t, "Rotors", resp.Results[1].GroupLabel)
}

func TestSearchSymptom_DiagnoserErrorPropagates(t *testing.T) {
	provider := &stubProvider{}
	eng, err := New(Deps{
		Logger:    observability.Nop(),
		Provider:  provider,
		Diagnoser: &stubDiagnoser{err: errors.New("diagnosis service down")},
	}, Config{})
	require.NoError(t, err)

	_, err = eng.SearchSymptom(context.Background(), SearchRequest{}, "grinding")
	assert.ErrorContains(t, err, "diagnosis service down")
}

func TestParseFilter_UsesBuiltInVocabularies(t *testing.T) {
	provider := &stubProvider{}
	eng := newTestEngine(t, provider, nil, nil)

	got := eng.ParseFilter("ceramic under $30 not Duralast in stock")

	assert.Equal(t, []string{"Ceramic"}, got.Materials)
	assert.Equal(t, 30.0, got.PriceMax)
	assert.Equal(t, []string{"Duralast"}, got.ExcludedBrands)
	assert.True(t, got.InStockOnly)
	assert.NotContains(t, got.Brands, "Duralast")
	assert.Contains(t, got.Brands, "Akebono")
}

func TestPricePreview(t *testing.T) {
	provider := &stubProvider{}
	rules := StaticRules{
		{RuleType: pricing.RuleBrand, Brand: "Bosch", MarkupType: pricing.MarkupFixed, MarkupValue: 15},
		{RuleType: pricing.RuleGlobal, MarkupType: pricing.MarkupPercentage, MarkupValue: 40},
	}
	eng := newTestEngine(t, provider, rules, nil)

	rule, breakdown := eng.PricePreview(context.Background(), "shop-1", "Bosch", "", 20)

	assert.Equal(t, pricing.RuleBrand, rule.RuleType)
	assert.Equal(t, 35.00, breakdown.ListPrice)
	assert.Equal(t, 15.00, breakdown.Margin)
}
