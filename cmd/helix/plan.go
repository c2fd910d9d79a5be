package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helix-ai/helix/internal/strategy"
)

var planSafe bool

var planCmd = &cobra.Command{
	Use:   "plan [objective]",
	Short: "Generate a plan for an objective using the best available planner",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planSafe, "safe", false,
		"wrap the strategy with the fault-tolerant fallback")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	f, _, err := newEngine()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	objective := strings.Join(args, " ")

	var strat strategy.Strategy = strategy.Route(f, objective)
	if planSafe {
		strat = strategy.NewFaultTolerantStrategy(
			strat, strategy.NewFallbackStrategy(), strategy.DefaultFailureThreshold, nil)
	}

	plan, err := strat.Propose(ctx, objective)
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s (planner: %s, strategy: %s)\n", plan.ID, plan.Planner, strat.Name())
	order, err := plan.ExecutionOrder()
	if err != nil {
		return err
	}

	byID := make(map[string]string, len(plan.Tasks))
	for _, task := range plan.Tasks {
		byID[task.ID] = task.Description
	}
	for i, id := range order {
		fmt.Printf("%3d. [%s] %s\n", i+1, id, byID[id])
	}
	return nil
}
