package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Waterfall(t *testing.T) {
	rules := []Rule{
		{ID: "global", RuleType: RuleGlobal, MarkupType: MarkupPercentage, MarkupValue: 40, Priority: 100},
		{ID: "cat", RuleType: RuleCategory, Category: "Brake Pads", MarkupType: MarkupPercentage, MarkupValue: 35, Priority: 50},
		{ID: "brand", RuleType: RuleBrand, Brand: "Bosch", MarkupType: MarkupPercentage, MarkupValue: 30, Priority: 1},
	}

	t.Run("brand beats category and global regardless of priority", func(t *testing.T) {
		// Brand rule has the lowest priority yet still wins its tier
		got := Resolve("Bosch", "Brake Pads", rules)
		assert.Equal(t, "brand", got.ID)
	})

	t.Run("category beats global when brand has no rule", func(t *testing.T) {
		got := Resolve("Wagner", "Brake Pads", rules)
		assert.Equal(t, "cat", got.ID)
	})

	t.Run("global when neither brand nor category match", func(t *testing.T) {
		got := Resolve("Wagner", "Rotors", rules)
		assert.Equal(t, "global", got.ID)
	})
}

func TestResolve_PriorityBreaksTiesWithinTier(t *testing.T) {
	rules := []Rule{
		{ID: "low", RuleType: RuleBrand, Brand: "Bosch", MarkupValue: 20, Priority: 1},
		{ID: "high", RuleType: RuleBrand, Brand: "Bosch", MarkupValue: 25, Priority: 10},
	}

	got := Resolve("Bosch", "", rules)
	assert.Equal(t, "high", got.ID)
}

func TestResolve_EqualPriorityFirstMatchWins(t *testing.T) {
	rules := []Rule{
		{ID: "first", RuleType: RuleBrand, Brand: "Bosch", Priority: 5},
		{ID: "second", RuleType: RuleBrand, Brand: "Bosch", Priority: 5},
	}

	// Stable sort preserves stored order for equal priorities
	for i := 0; i < 10; i++ {
		got := Resolve("Bosch", "", rules)
		assert.Equal(t, "first", got.ID)
	}
}

func TestResolve_CaseInsensitiveMatching(t *testing.T) {
	rules := []Rule{
		{ID: "brand", RuleType: RuleBrand, Brand: "bosch"},
		{ID: "cat", RuleType: RuleCategory, Category: "brake pads"},
	}

	assert.Equal(t, "brand", Resolve("BOSCH", "", rules).ID)
	assert.Equal(t, "cat", Resolve("", "Brake Pads", rules).ID)
}

func TestResolve_EmptyBrandAndCategorySkipTheirTiers(t *testing.T) {
	rules := []Rule{
		{ID: "brand", RuleType: RuleBrand, Brand: "Bosch"},
		{ID: "cat", RuleType: RuleCategory, Category: "Brake Pads"},
		{ID: "global", RuleType: RuleGlobal},
	}

	got := Resolve("", "   ", rules)
	assert.Equal(t, "global", got.ID)
}

func TestResolve_FallbackWhenNoRules(t *testing.T) {
	got := Resolve("Bosch", "Brake Pads", nil)

	assert.Equal(t, RuleGlobal, got.RuleType)
	assert.Equal(t, MarkupPercentage, got.MarkupType)
	assert.Equal(t, 40.0, got.MarkupValue)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	rules := []Rule{
		{ID: "a", RuleType: RuleGlobal, Priority: 1},
		{ID: "b", RuleType: RuleGlobal, Priority: 2},
	}

	Resolve("", "", rules)

	assert.Equal(t, "a", rules[0].ID)
	assert.Equal(t, "b", rules[1].ID)
}
