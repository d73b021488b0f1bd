// Package main is the entry point for the partsctl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/torquepoint/parts-engine/cmd/partsctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
