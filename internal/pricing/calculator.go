package pricing

import "math"

// Breakdown is the result of pricing one part cost under one rule.
type Breakdown struct {
	ListPrice float64
	Margin    float64
	MarginPct float64
}

// Price computes the sellable list price and margin for a cost under the
// given rule.
//
// A non-positive cost short-circuits to an all-zero breakdown; a zero-cost
// line has no meaningful margin. ListPrice below cost is not clamped: a fixed
// markdown rule can legally price under cost and the breakdown reports it
// honestly.
func Price(cost float64, rule Rule) Breakdown {
	if cost <= 0 {
		return Breakdown{}
	}

	var listPrice float64
	switch rule.MarkupType {
	case MarkupFixed:
		listPrice = Round2(cost + rule.MarkupValue)
	case MarkupMatrix:
		listPrice = Round2(cost * (1 + matrixPercent(cost, rule)/100))
	default: // MarkupPercentage
		listPrice = Round2(cost * (1 + rule.MarkupValue/100))
	}

	margin := Round2(listPrice - cost)

	var marginPct float64
	if listPrice > 0 {
		marginPct = Round1((listPrice - cost) / listPrice * 100)
	}

	return Breakdown{
		ListPrice: listPrice,
		Margin:    margin,
		MarginPct: marginPct,
	}
}

// Applied summarizes the rule for display and audit on an enriched result.
func (r Rule) Applied() AppliedRule {
	return AppliedRule{
		Type:       r.RuleType,
		MarkupType: r.MarkupType,
		Value:      r.MarkupValue,
	}
}

// matrixPercent finds the markup percent for a cost within the rule's matrix
// tiers. Tiers are half-open [min, max) intervals; a nil max is unbounded.
// When no tier contains the cost, the rule's flat MarkupValue is used.
func matrixPercent(cost float64, rule Rule) float64 {
	for _, tier := range rule.MatrixTiers {
		if cost < tier.Min {
			continue
		}
		if tier.Max != nil && cost >= *tier.Max {
			continue
		}
		return tier.Percent
	}
	return rule.MarkupValue
}

// Round2 rounds money to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

// Round1 rounds percentages to 1 decimal place, half away from zero.
func Round1(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*10+0.5) / 10
	}
	return math.Floor(v*10+0.5) / 10
}
