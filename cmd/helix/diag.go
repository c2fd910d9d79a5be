package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diagOut string

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Export a diagnostics report to a YAML file",
	RunE:  runDiag,
}

func init() {
	diagCmd.Flags().StringVar(&diagOut, "out", "helix-diag.yaml",
		"output path for the diagnostics report")
	rootCmd.AddCommand(diagCmd)
}

func runDiag(cmd *cobra.Command, args []string) error {
	f, _, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	f.Discover(ctx)

	if err := f.ExportReport(ctx, diagOut); err != nil {
		return err
	}
	fmt.Printf("diagnostics report written to %s\n", diagOut)
	return nil
}
