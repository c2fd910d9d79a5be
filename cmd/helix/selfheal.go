package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selfhealCmd = &cobra.Command{
	Use:   "selfheal",
	Short: "Force a re-discovery pass and report the resulting health",
	RunE:  runSelfHeal,
}

func init() {
	rootCmd.AddCommand(selfhealCmd)
}

func runSelfHeal(cmd *cobra.Command, args []string) error {
	f, _, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	f.Discover(ctx)
	f.SelfHeal(ctx)

	health := f.Health(ctx)
	fmt.Printf("Health after self-heal: %s (%s)\n", health.State, health.Message)
	return nil
}
