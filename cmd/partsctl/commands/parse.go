package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/torquepoint/parts-engine/cmd/partsctl/ui"
	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/smartfilter"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text>...",
	Short: "Show how a natural-language filter phrase is interpreted",
	Long: `Parse runs the smart-filter parser over the given text and prints the
resulting criteria. Useful for checking what a phrase like
"ceramic under $30 not Duralast in stock" actually filters on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	ui.Init(noColor, verbose)

	text := strings.Join(args, " ")
	criteria := smartfilter.Parse(text, catalog.KnownBrands(), catalog.KnownVendors())

	ui.Section("Parsed Filter")
	rows := [][]string{}

	if len(criteria.Brands) > 0 {
		rows = append(rows, []string{"Brands", strings.Join(criteria.Brands, ", ")})
	}
	if len(criteria.ExcludedBrands) > 0 {
		rows = append(rows, []string{"Excluded brands", strings.Join(criteria.ExcludedBrands, ", ")})
	}
	if len(criteria.Vendors) > 0 {
		rows = append(rows, []string{"Vendors", strings.Join(criteria.Vendors, ", ")})
	}
	if len(criteria.Materials) > 0 {
		rows = append(rows, []string{"Materials", strings.Join(criteria.Materials, ", ")})
	}
	if len(criteria.Tiers) > 0 {
		tiers := make([]string, len(criteria.Tiers))
		for i, t := range criteria.Tiers {
			tiers[i] = string(t)
		}
		rows = append(rows, []string{"Tiers", strings.Join(tiers, ", ")})
	}
	if criteria.PriceMin > 0 {
		rows = append(rows, []string{"Min price", fmt.Sprintf("$%.2f", criteria.PriceMin)})
	}
	if criteria.PriceMax > 0 {
		rows = append(rows, []string{"Max price", fmt.Sprintf("$%.2f", criteria.PriceMax)})
	}
	if criteria.InStockOnly {
		rows = append(rows, []string{"In stock only", "yes"})
	}

	if len(rows) == 0 {
		ui.Info("No filters recognized; everything passes.")
		return nil
	}

	ui.Table([]string{"FACET", "VALUE"}, rows)
	return nil
}
