package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/torquepoint/parts-engine/cmd/partsctl/ui"
	"github.com/torquepoint/parts-engine/internal/ranking"
	"github.com/torquepoint/parts-engine/internal/search"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

var (
	searchShopID  string
	searchSymptom string
	searchFilter  string
	searchSort    string
	vehicleYear   int
	vehicleMake   string
	vehicleModel  string
	vehicleVIN    string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]...",
	Short: "Search for parts and rank them by margin, cost, delivery, or relevance",
	Long: `Search fans one or more part queries out to the search provider and prints
the priced, ranked results. Prefix a query with "label=" to name its group,
e.g. 'pads=brake pads front'. With --symptom, the diagnosis service picks
the part queries for you.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchShopID, "shop", "", "shop ID whose pricing rules apply")
	searchCmd.Flags().StringVar(&searchSymptom, "symptom", "", "free-text symptom to diagnose into part queries")
	searchCmd.Flags().StringVarP(&searchFilter, "filter", "f", "", "natural-language filter, e.g. 'ceramic under $50 in stock'")
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", string(ranking.SortBestMargin), "sort key: best_margin, lowest_cost, fastest_delivery, best_match")
	searchCmd.Flags().IntVar(&vehicleYear, "year", 0, "vehicle year")
	searchCmd.Flags().StringVar(&vehicleMake, "make", "", "vehicle make")
	searchCmd.Flags().StringVar(&vehicleModel, "model", "", "vehicle model")
	searchCmd.Flags().StringVar(&vehicleVIN, "vin", "", "vehicle VIN")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && searchSymptom == "" {
		return fmt.Errorf("provide at least one query or --symptom")
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

	req := engine.SearchRequest{
		ShopID: searchShopID,
		Vehicle: search.VehicleContext{
			Year:  vehicleYear,
			Make:  vehicleMake,
			Model: vehicleModel,
			VIN:   vehicleVIN,
		},
		Sort: ranking.SortKey(searchSort),
	}

	for _, arg := range args {
		req.Queries = append(req.Queries, parseQueryArg(arg))
	}

	if searchFilter != "" {
		req.Filters = eng.ParseFilter(searchFilter)
		ui.Verbose("parsed filter: %+v", req.Filters)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	spin := ui.NewSpinner("Searching...")
	spin.Start()

	var resp *engine.SearchResponse
	if searchSymptom != "" {
		resp, err = eng.SearchSymptom(ctx, req, searchSymptom)
	} else {
		resp, err = eng.Search(ctx, req)
	}
	spin.Stop()

	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printGroups(resp)
	printResults(resp)
	return nil
}

// parseQueryArg splits an optional "label=" prefix off a query argument.
func parseQueryArg(arg string) search.Query {
	if i := strings.Index(arg, "="); i > 0 {
		return search.Query{Label: arg[:i], Text: arg[i+1:]}
	}
	return search.Query{Text: arg}
}

func printGroups(resp *engine.SearchResponse) {
	for _, group := range resp.Groups {
		if group.Error != "" {
			ui.Warning("%s: %s", group.Query, group.Error)
		} else {
			ui.Verbose("%s: %d results", group.Query, group.ResultCount)
		}
	}
}

func printResults(resp *engine.SearchResponse) {
	if len(resp.Results) == 0 {
		ui.Info("No results matched.")
		return
	}

	ui.Section(fmt.Sprintf("Results (%d in %dms)", len(resp.Results), resp.LatencyMs))

	headers := []string{"PART", "BRAND", "TIER", "VENDOR", "COST", "LIST", "MARGIN", "DELIVERY", "FITMENT"}
	rows := make([][]string, 0, len(resp.Results))
	for _, part := range resp.Results {
		name := part.PartName
		if part.GroupLabel != "" {
			name = fmt.Sprintf("[%s] %s", part.GroupLabel, name)
		}
		if part.ID == resp.TopPickID {
			name = "★ " + name
		}
		rows = append(rows, []string{
			name,
			part.Brand,
			string(part.Tier),
			part.Vendor,
			fmt.Sprintf("$%.2f", part.Cost),
			fmt.Sprintf("$%.2f", part.ListPrice),
			fmt.Sprintf("$%.2f (%.1f%%)", part.Margin, part.MarginPct),
			fmt.Sprintf("%dh", part.DeliveryHours),
			string(part.Fitment),
		})
	}
	ui.Table(headers, rows)

	if resp.FromCache {
		ui.Newline()
		ui.Verbose("served from cache")
	}
}
