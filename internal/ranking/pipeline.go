// Package ranking provides the filter and sort pipeline applied to enriched
// part results before display.
package ranking

import (
	"sort"
	"strings"

	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/pricing"
)

// SortKey selects the comparator used to order results.
type SortKey string

const (
	SortBestMargin       SortKey = "best_margin"      // descending margin
	SortLowestCost       SortKey = "lowest_cost"      // ascending cost
	SortFastestDelivery  SortKey = "fastest_delivery" // ascending delivery hours
	SortBestMatch        SortKey = "best_match"       // descending relevance score
)

// inStockMaxDeliveryHours is the delivery ceiling treated as "in stock".
const inStockMaxDeliveryHours = 24

// FilterCriteria holds user-selected facet filters. Empty sets mean no
// constraint on that facet; the zero value is the identity filter.
type FilterCriteria struct {
	Brands         []string       `json:"brands,omitempty"`
	ExcludedBrands []string       `json:"excludedBrands,omitempty"`
	Vendors        []string       `json:"vendors,omitempty"`
	Materials      []string       `json:"materials,omitempty"`
	Tiers          []catalog.Tier `json:"tiers,omitempty"`
	PriceMin       float64        `json:"priceMin,omitempty"`
	PriceMax       float64        `json:"priceMax,omitempty"`
	InStockOnly    bool           `json:"inStockOnly,omitempty"`
}

// Apply filters results by the criteria, then orders them by the sort key.
// When results carry group labels (multi-part or diagnosed searches), groups
// stay contiguous in their discovery order and each group is sorted
// independently, so unrelated part types never interleave. Sorting is stable:
// equal keys preserve normalization order.
func Apply(results []pricing.EnrichedPart, criteria FilterCriteria, key SortKey) []pricing.EnrichedPart {
	filtered := make([]pricing.EnrichedPart, 0, len(results))
	for _, result := range results {
		if matches(result, criteria) {
			filtered = append(filtered, result)
		}
	}

	if grouped(filtered) {
		return sortGrouped(filtered, key)
	}

	sortResults(filtered, key)
	return filtered
}

// TopPick returns the ID of the single highest-ranked result when the
// best-match ordering is active, for UI highlighting. The flag is derived,
// never stored.
func TopPick(ordered []pricing.EnrichedPart, key SortKey) string {
	if key != SortBestMatch || len(ordered) == 0 {
		return ""
	}

	top := ordered[0]
	for _, result := range ordered[1:] {
		if result.RelevanceScore > top.RelevanceScore {
			top = result
		}
	}
	return top.ID
}

// matches reports whether a result survives every non-empty facet. The
// excluded-brand denylist applies regardless of the brand include set.
func matches(result pricing.EnrichedPart, c FilterCriteria) bool {
	if containsFold(c.ExcludedBrands, result.Brand) {
		return false
	}
	if len(c.Brands) > 0 && !containsFold(c.Brands, result.Brand) {
		return false
	}
	if len(c.Vendors) > 0 && !containsFold(c.Vendors, result.Vendor) {
		return false
	}
	if len(c.Materials) > 0 && !containsFold(c.Materials, result.Material) {
		return false
	}
	if len(c.Tiers) > 0 && !containsTier(c.Tiers, result.Tier) {
		return false
	}
	if c.PriceMin > 0 && result.Cost < c.PriceMin {
		return false
	}
	if c.PriceMax > 0 && result.Cost > c.PriceMax {
		return false
	}
	if c.InStockOnly && result.DeliveryHours > inStockMaxDeliveryHours {
		return false
	}
	return true
}

// grouped reports whether the result set came from a multi-part request.
func grouped(results []pricing.EnrichedPart) bool {
	for _, result := range results {
		if result.GroupLabel != "" {
			return true
		}
	}
	return false
}

// sortGrouped partitions by group label in discovery order, sorts each group
// independently, and concatenates.
func sortGrouped(results []pricing.EnrichedPart, key SortKey) []pricing.EnrichedPart {
	var order []string
	groups := make(map[string][]pricing.EnrichedPart)
	for _, result := range results {
		if _, seen := groups[result.GroupLabel]; !seen {
			order = append(order, result.GroupLabel)
		}
		groups[result.GroupLabel] = append(groups[result.GroupLabel], result)
	}

	merged := make([]pricing.EnrichedPart, 0, len(results))
	for _, label := range order {
		group := groups[label]
		sortResults(group, key)
		merged = append(merged, group...)
	}
	return merged
}

// sortResults orders a slice in place with a stable sort.
func sortResults(results []pricing.EnrichedPart, key SortKey) {
	switch key {
	case SortLowestCost:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Cost < results[j].Cost
		})
	case SortFastestDelivery:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].DeliveryHours < results[j].DeliveryHours
		})
	case SortBestMatch:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].RelevanceScore > results[j].RelevanceScore
		})
	default: // SortBestMargin
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Margin > results[j].Margin
		})
	}
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func containsTier(tiers []catalog.Tier, tier catalog.Tier) bool {
	for _, t := range tiers {
		if t == tier {
			return true
		}
	}
	return false
}
