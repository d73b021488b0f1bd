package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/pricing"
)

func part(id string, fields func(*pricing.EnrichedPart)) pricing.EnrichedPart {
	p := pricing.EnrichedPart{
		PartResult: catalog.PartResult{
			ID:            id,
			Brand:         "Bosch",
			Vendor:        "RockAuto",
			Tier:          catalog.TierBetter,
			DeliveryHours: 48,
		},
	}
	if fields != nil {
		fields(&p)
	}
	return p
}

func ids(results []pricing.EnrichedPart) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestApply_ZeroCriteriaIsIdentity(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("a", func(p *pricing.EnrichedPart) { p.Margin = 5 }),
		part("b", func(p *pricing.EnrichedPart) { p.Margin = 10 }),
		part("c", func(p *pricing.EnrichedPart) { p.Margin = 1 }),
	}

	got := Apply(results, FilterCriteria{}, SortBestMargin)

	assert.Equal(t, []string{"b", "a", "c"}, ids(got))
}

func TestApply_FacetsAreConjunctive(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("match", func(p *pricing.EnrichedPart) { p.Material = "Ceramic"; p.Cost = 25 }),
		part("wrong-material", func(p *pricing.EnrichedPart) { p.Material = "Organic"; p.Cost = 25 }),
		part("too-expensive", func(p *pricing.EnrichedPart) { p.Material = "Ceramic"; p.Cost = 80 }),
	}

	got := Apply(results, FilterCriteria{
		Materials: []string{"Ceramic"},
		PriceMax:  50,
	}, SortBestMargin)

	assert.Equal(t, []string{"match"}, ids(got))
}

func TestApply_ExcludedBrandsBeatIncludeList(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("bosch", nil),
		part("wagner", func(p *pricing.EnrichedPart) { p.Brand = "Wagner" }),
	}

	// Bosch is both included and excluded; the denylist wins
	got := Apply(results, FilterCriteria{
		Brands:         []string{"Bosch", "Wagner"},
		ExcludedBrands: []string{"Bosch"},
	}, SortBestMargin)

	assert.Equal(t, []string{"wagner"}, ids(got))
}

func TestApply_BrandMatchingIsCaseInsensitive(t *testing.T) {
	results := []pricing.EnrichedPart{part("a", nil)}

	got := Apply(results, FilterCriteria{Brands: []string{"BOSCH"}}, SortBestMargin)

	assert.Len(t, got, 1)
}

func TestApply_InStockOnly(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("fast", func(p *pricing.EnrichedPart) { p.DeliveryHours = 24 }),
		part("slow", func(p *pricing.EnrichedPart) { p.DeliveryHours = 48 }),
	}

	got := Apply(results, FilterCriteria{InStockOnly: true}, SortBestMargin)

	assert.Equal(t, []string{"fast"}, ids(got))
}

func TestApply_PriceRange(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("cheap", func(p *pricing.EnrichedPart) { p.Cost = 5 }),
		part("mid", func(p *pricing.EnrichedPart) { p.Cost = 30 }),
		part("dear", func(p *pricing.EnrichedPart) { p.Cost = 90 }),
	}

	got := Apply(results, FilterCriteria{PriceMin: 10, PriceMax: 50}, SortBestMargin)

	assert.Equal(t, []string{"mid"}, ids(got))
}

func TestApply_SortKeys(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("a", func(p *pricing.EnrichedPart) {
			p.Margin = 5
			p.Cost = 10
			p.DeliveryHours = 72
			p.RelevanceScore = 90
		}),
		part("b", func(p *pricing.EnrichedPart) {
			p.Margin = 15
			p.Cost = 30
			p.DeliveryHours = 24
			p.RelevanceScore = 40
		}),
		part("c", func(p *pricing.EnrichedPart) {
			p.Margin = 10
			p.Cost = 20
			p.DeliveryHours = 48
			p.RelevanceScore = 70
		}),
	}

	tests := []struct {
		key      SortKey
		expected []string
	}{
		{SortBestMargin, []string{"b", "c", "a"}},
		{SortLowestCost, []string{"a", "c", "b"}},
		{SortFastestDelivery, []string{"b", "c", "a"}},
		{SortBestMatch, []string{"a", "c", "b"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.key), func(t *testing.T) {
			got := Apply(results, FilterCriteria{}, tc.key)
			assert.Equal(t, tc.expected, ids(got))
		})
	}
}

func TestApply_StableUnderEqualKeys(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("first", func(p *pricing.EnrichedPart) { p.Margin = 10 }),
		part("second", func(p *pricing.EnrichedPart) { p.Margin = 10 }),
		part("third", func(p *pricing.EnrichedPart) { p.Margin = 10 }),
	}

	got := Apply(results, FilterCriteria{}, SortBestMargin)

	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestApply_GroupsStayContiguousInDiscoveryOrder(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("p1", func(p *pricing.EnrichedPart) { p.GroupLabel = "pads"; p.Margin = 5 }),
		part("p2", func(p *pricing.EnrichedPart) { p.GroupLabel = "pads"; p.Margin = 20 }),
		part("r1", func(p *pricing.EnrichedPart) { p.GroupLabel = "rotors"; p.Margin = 50 }),
		part("r2", func(p *pricing.EnrichedPart) { p.GroupLabel = "rotors"; p.Margin = 1 }),
	}

	got := Apply(results, FilterCriteria{}, SortBestMargin)

	// Rotors carry the highest margin overall but pads were discovered first,
	// so the pads group still leads. Within each group margin sorting applies.
	assert.Equal(t, []string{"p2", "p1", "r1", "r2"}, ids(got))
}

func TestTopPick(t *testing.T) {
	results := []pricing.EnrichedPart{
		part("a", func(p *pricing.EnrichedPart) { p.RelevanceScore = 40 }),
		part("b", func(p *pricing.EnrichedPart) { p.RelevanceScore = 95 }),
	}

	assert.Equal(t, "b", TopPick(results, SortBestMatch))

	// Only the best-match ordering derives a pick
	assert.Equal(t, "", TopPick(results, SortBestMargin))
	assert.Equal(t, "", TopPick(nil, SortBestMatch))
}
