package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display planner pool health and registry statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	f, policy, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	f.Discover(ctx)

	health := f.Health(ctx)
	stats := f.Stats()

	fmt.Printf("Environment: %s\n", policy.Environment)
	fmt.Printf("Health:      %s (%s)\n", health.State, health.Message)
	fmt.Printf("Discoveries: %d  Selections: %d  Generations: %d  Failures: %d\n",
		stats.Discoveries, stats.Selections, stats.Generations, stats.Failures)
	return nil
}
