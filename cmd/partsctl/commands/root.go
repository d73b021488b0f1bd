// Package commands implements the partsctl command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "partsctl",
	Short: "Parts Engine - search, price, and rank auto parts from the terminal",
	Long: `partsctl fans part queries out to the configured search provider, prices the
hits through the shop's markup rules, and prints the ranked results. It also
exposes the pricing-rule waterfall and the smart-filter parser directly for
quick inspection.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
