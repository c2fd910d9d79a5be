package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helix-ai/helix/internal/factory"
	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/observability"
	"github.com/helix-ai/helix/internal/planners"
	"github.com/helix-ai/helix/internal/registry"
)

var (
	policyPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "Planner registry and selection engine",
	Long: `Helix manages a pool of pluggable planning strategies: it registers
planners behind a self-test gate, tracks their live reliability, quarantines
broken ones, and selects the best candidate for each objective.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "helix.yaml",
		"path to the governance policy file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// newEngine builds the composition root for a CLI invocation: governance
// policy, registry, and a factory wired with the built-in planners.
func newEngine() (*factory.Factory, *governance.Policy, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := observability.NewTracedLogger(
		observability.NewTextHandler(os.Stderr, level), "helix")

	policy, err := governance.NewLoader().LoadWithDefaults(policyPath)
	if err != nil {
		return nil, nil, err
	}

	reg := registry.New(policy, log)
	f := factory.New(reg, policy, log, planners.Builtin())
	return f, policy, nil
}
