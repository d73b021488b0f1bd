package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/torquepoint/parts-engine/cmd/partsctl/ui"
	"github.com/torquepoint/parts-engine/internal/pricing"
)

var (
	priceShopID   string
	priceBrand    string
	priceCategory string
	priceCost     float64
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Preview which pricing rule wins for a brand and category",
	Long: `Price resolves the shop's rule waterfall for the given brand and category
and prices a hypothetical cost through the winning rule.`,
	RunE: runPrice,
}

func init() {
	priceCmd.Flags().StringVar(&priceShopID, "shop", "", "shop ID whose pricing rules apply")
	priceCmd.Flags().StringVar(&priceBrand, "brand", "", "part brand")
	priceCmd.Flags().StringVar(&priceCategory, "category", "", "part category")
	priceCmd.Flags().Float64Var(&priceCost, "cost", 0, "wholesale cost to price (required)")
	priceCmd.MarkFlagRequired("cost")
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	if priceCost < 0 {
		return fmt.Errorf("cost must not be negative")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rule, breakdown := eng.PricePreview(ctx, priceShopID, priceBrand, priceCategory, priceCost)

	ui.Section("Pricing Preview")
	ui.Info("Rule: %s", describeRule(rule))
	ui.Newline()

	ui.Table(
		[]string{"COST", "LIST", "MARGIN", "MARGIN %"},
		[][]string{{
			fmt.Sprintf("$%.2f", priceCost),
			fmt.Sprintf("$%.2f", breakdown.ListPrice),
			fmt.Sprintf("$%.2f", breakdown.Margin),
			fmt.Sprintf("%.1f%%", breakdown.MarginPct),
		}},
	)
	return nil
}

func describeRule(rule pricing.Rule) string {
	scope := string(rule.RuleType)
	switch rule.RuleType {
	case pricing.RuleBrand:
		scope = fmt.Sprintf("brand %q", rule.Brand)
	case pricing.RuleCategory:
		scope = fmt.Sprintf("category %q", rule.Category)
	}

	switch rule.MarkupType {
	case pricing.MarkupFixed:
		return fmt.Sprintf("%s, fixed +$%.2f", scope, rule.MarkupValue)
	case pricing.MarkupMatrix:
		return fmt.Sprintf("%s, matrix with %d tiers", scope, len(rule.MatrixTiers))
	default:
		return fmt.Sprintf("%s, %.1f%% markup", scope, rule.MarkupValue)
	}
}
