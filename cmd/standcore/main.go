// Package main provides the standcore binary entry point. Standcore
// reconciles repeated woody vegetation surveys into annual aboveground
// biomass density tables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standcore",
		Short: "Temporal reconciliation of woody vegetation surveys",
		Long: `Standcore turns repeated stem surveys, allometric biomass estimates, and
survey events into reconciled per-individual and per-plot biomass density
tables with growth metrics and an exceptions audit.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(runCmd())
	cmd.AddCommand(runsCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("standcore version %s\n", version)
		},
	})

	return cmd
}
