// Package pricing provides the shop pricing-rule model, the rule resolver,
// and the price calculator.
package pricing

import "github.com/torquepoint/parts-engine/internal/catalog"

// RuleType scopes a pricing rule to a brand, a category, or the whole shop.
type RuleType string

const (
	RuleGlobal   RuleType = "global"
	RuleCategory RuleType = "category"
	RuleBrand    RuleType = "brand"
)

// MarkupType selects the markup formula a rule applies.
type MarkupType string

const (
	MarkupPercentage MarkupType = "percentage"
	MarkupFixed      MarkupType = "fixed"
	MarkupMatrix     MarkupType = "matrix"
)

// MatrixTier maps a half-open cost interval [Min, Max) to a markup percent.
// A nil Max means the tier is unbounded above.
type MatrixTier struct {
	Min     float64  `json:"min"`
	Max     *float64 `json:"max,omitempty"`
	Percent float64  `json:"pct"`
}

// Rule is one stored pricing policy. Rules are read-only to the engine for
// the duration of a ranking pass; at most one global rule exists per shop.
type Rule struct {
	ID          string
	ShopID      string
	RuleType    RuleType
	Brand       string
	Category    string
	MarkupType  MarkupType
	MarkupValue float64
	MatrixTiers []MatrixTier
	Priority    int
}

// AppliedRule records which rule produced a price, for display and audit.
type AppliedRule struct {
	Type       RuleType
	MarkupType MarkupType
	Value      float64
}

// EnrichedPart is a canonical part result plus its computed pricing fields.
// ListPrice below Cost is legal and reported as-is; a misconfigured fixed
// markdown must stay visible to the business.
type EnrichedPart struct {
	catalog.PartResult
	ListPrice float64
	Margin    float64
	MarginPct float64
	Applied   AppliedRule
}
