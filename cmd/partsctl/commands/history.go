package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/torquepoint/parts-engine/cmd/partsctl/ui"
	"github.com/torquepoint/parts-engine/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches from the local history store",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := storage.OpenHistoryDB(cfg.Database.History.Path, cfg.Database.History.JournalMode)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := storage.NewHistoryStore(db).Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if len(entries) == 0 {
		ui.Info("No searches recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		var parts []string
		if entry.Vehicle.Year != 0 {
			parts = append(parts, fmt.Sprintf("%d", entry.Vehicle.Year))
		}
		if entry.Vehicle.Make != "" {
			parts = append(parts, entry.Vehicle.Make)
		}
		if entry.Vehicle.Model != "" {
			parts = append(parts, entry.Vehicle.Model)
		}
		vehicle := strings.Join(parts, " ")
		rows = append(rows, []string{
			entry.SearchedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(entry.Queries, "; "),
			vehicle,
			fmt.Sprintf("%d", entry.TotalResults),
			fmt.Sprintf("%d", entry.FailedQueries),
		})
	}

	ui.Table([]string{"WHEN", "QUERIES", "VEHICLE", "RESULTS", "FAILED"}, rows)
	return nil
}
