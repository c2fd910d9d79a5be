package strategy

import (
	"context"
	"strings"

	"github.com/helix-ai/helix/internal/planner"
)

// fallbackPlannerName is the planner name stamped on fallback plans.
const fallbackPlannerName = "fallback"

// FallbackStrategy is the minimal always-available strategy: it builds a
// small, valid plan directly without consulting the registry, so it cannot
// be starved by quarantine or discovery failures.
type FallbackStrategy struct{}

// NewFallbackStrategy creates the fallback strategy.
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{}
}

func (s *FallbackStrategy) Name() string { return fallbackPlannerName }

// Propose always returns a valid three-task plan.
func (s *FallbackStrategy) Propose(ctx context.Context, objective string) (*planner.Plan, error) {
	if strings.TrimSpace(objective) == "" {
		objective = "unspecified objective"
	}

	plan := planner.NewPlan(fallbackPlannerName, objective)
	plan.AddTask("clarify", "Clarify the objective and its success criteria")
	plan.AddTask("execute", "Execute the objective directly", "clarify")
	plan.AddTask("verify", "Verify the outcome against the objective", "execute")
	return plan, nil
}
