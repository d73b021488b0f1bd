package pricing

import (
	"sort"
	"strings"
)

// fallbackMarkupPercent is the markup applied when a shop has no rules at
// all, not even a global one.
const fallbackMarkupPercent = 40

// Resolve picks the single applicable pricing rule for a part. The waterfall
// is strict: a brand rule always beats a category rule, which always beats
// the global rule, regardless of stored priority values across tiers.
// Priority only breaks ties within a tier, first match winning. Resolution
// always terminates with a rule; with nothing applicable the built-in 40%
// percentage fallback is returned.
func Resolve(brand, category string, rules []Rule) Rule {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	if brand = strings.TrimSpace(brand); brand != "" {
		for _, rule := range sorted {
			if rule.RuleType == RuleBrand && strings.EqualFold(rule.Brand, brand) {
				return rule
			}
		}
	}

	if category = strings.TrimSpace(category); category != "" {
		for _, rule := range sorted {
			if rule.RuleType == RuleCategory && strings.EqualFold(rule.Category, category) {
				return rule
			}
		}
	}

	for _, rule := range sorted {
		if rule.RuleType == RuleGlobal {
			return rule
		}
	}

	return FallbackRule()
}

// FallbackRule returns the built-in last-resort global rule.
func FallbackRule() Rule {
	return Rule{
		RuleType:    RuleGlobal,
		MarkupType:  MarkupPercentage,
		MarkupValue: fallbackMarkupPercent,
		Priority:    0,
	}
}
