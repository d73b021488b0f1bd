// Package smartfilter converts free-text filter phrases into structured
// filter criteria. Parsing is deterministic and rule-based; an input matching
// nothing yields empty criteria, which is a legal no-op filter.
package smartfilter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/ranking"
)

var (
	priceMaxRe = regexp.MustCompile(`(under|below|max|less than|cheaper than)\s*\$?(\d+(\.\d{1,2})?)`)
	priceMinRe = regexp.MustCompile(`(over|above|min|more than|at least)\s*\$?(\d+(\.\d{1,2})?)`)
)

// materialKeywords maps input spellings to canonical material names.
var materialKeywords = []struct {
	keyword  string
	material string
}{
	{"semi-metallic", "Semi-Metallic"},
	{"semi metallic", "Semi-Metallic"},
	{"semimetallic", "Semi-Metallic"},
	{"ceramic", "Ceramic"},
	{"organic", "Organic"},
}

var stockPhrases = []string{"in stock", "available now", "available today", "same day"}

// tierKeywords are not mutually exclusive; several tiers may be added.
var tierKeywords = []struct {
	keyword string
	tier    catalog.Tier
}{
	{"premium", catalog.TierBest},
	{"best", catalog.TierBest},
	{"quality", catalog.TierBetter},
	{"mid-range", catalog.TierBetter},
	{"better", catalog.TierBetter},
	{"economy", catalog.TierGood},
	{"budget", catalog.TierGood},
	{"cheap", catalog.TierGood},
}

// exclusionPrefixes are the phrasings that turn a brand mention into a
// denylist entry.
var exclusionPrefixes = []string{"not ", "no ", "exclude ", "without ", "skip "}

// Parse converts a free-text filter phrase into filter criteria against the
// given brand and vendor vocabularies. It never fails.
func Parse(text string, knownBrands, knownVendors []string) ranking.FilterCriteria {
	lower := strings.ToLower(text)
	var criteria ranking.FilterCriteria

	for _, entry := range materialKeywords {
		if strings.Contains(lower, entry.keyword) && !containsString(criteria.Materials, entry.material) {
			criteria.Materials = append(criteria.Materials, entry.material)
		}
	}

	if m := priceMaxRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			criteria.PriceMax = v
		}
	}

	if m := priceMinRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			criteria.PriceMin = v
		}
	}

	for _, phrase := range stockPhrases {
		if strings.Contains(lower, phrase) {
			criteria.InStockOnly = true
			break
		}
	}

	for _, entry := range tierKeywords {
		if strings.Contains(lower, entry.keyword) && !containsTier(criteria.Tiers, entry.tier) {
			criteria.Tiers = append(criteria.Tiers, entry.tier)
		}
	}

	// Exclusions are scanned first so an excluded brand's mention is not
	// also read as an inclusion.
	for _, brand := range knownBrands {
		brandLower := strings.ToLower(brand)
		for _, prefix := range exclusionPrefixes {
			if strings.Contains(lower, prefix+brandLower) {
				criteria.ExcludedBrands = append(criteria.ExcludedBrands, brand)
				break
			}
		}
	}

	for _, brand := range knownBrands {
		if containsString(criteria.ExcludedBrands, brand) {
			continue
		}
		if strings.Contains(lower, strings.ToLower(brand)) {
			criteria.Brands = append(criteria.Brands, brand)
		}
	}

	// Exclusion alone must be actionable: with no explicit includes, the
	// include set becomes every known brand minus the excluded ones.
	if len(criteria.ExcludedBrands) > 0 && len(criteria.Brands) == 0 {
		for _, brand := range knownBrands {
			if !containsString(criteria.ExcludedBrands, brand) {
				criteria.Brands = append(criteria.Brands, brand)
			}
		}
	}

	for _, vendor := range knownVendors {
		if strings.Contains(lower, strings.ToLower(vendor)) {
			criteria.Vendors = append(criteria.Vendors, vendor)
		}
	}

	return criteria
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
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
