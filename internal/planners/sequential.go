// Package planners ships the built-in reference planners registered by the
// default composition root: a linear task-chain planner and a recursive
// objective decomposer. They double as working examples of the registration
// contract for plugin authors.
package planners

import (
	"context"
	"fmt"
	"strings"

	"github.com/helix-ai/helix/internal/factory"
	"github.com/helix-ai/helix/internal/planner"
)

// Builtin returns the providers for the bundled planners, in the form the
// factory's bootstrap consumes.
func Builtin() []factory.Provider {
	return []factory.Provider{
		{Origin: "builtin/sequential", Build: NewSequential},
		{Origin: "builtin/decompose", Build: NewDecompose},
	}
}

// Sequential is the core linear planner: it turns an objective into a
// straight chain of tasks, each depending on the previous one.
type Sequential struct {
	planner.Base
}

// NewSequential constructs the sequential planner.
func NewSequential() (planner.Planner, error) {
	return &Sequential{
		Base: planner.Base{
			PlannerName:    "sequential",
			PlannerVersion: "1.2.0",
			Caps:           []string{"sequential", "linear"},
			Production:     true,
			PlannerTier:    planner.TierCore,
			Risk:           planner.RiskLow,
		},
	}, nil
}

// Generate builds a linear chain: analyze, one step per objective clause,
// review.
func (s *Sequential) Generate(ctx context.Context, objective string, pctx planner.PlanContext) (*planner.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(objective) == "" {
		return nil, fmt.Errorf("objective is empty")
	}

	plan := planner.NewPlan(s.Name(), objective)
	plan.AddTask("analyze", "Analyze the objective and its constraints")

	prev := "analyze"
	for i, clause := range splitClauses(objective) {
		id := fmt.Sprintf("step-%d", i+1)
		plan.AddTask(id, clause, prev)
		prev = id
	}

	plan.AddTask("review", "Review the results against the objective", prev)
	plan.PutMetadata(planner.MetaStructuralGrade, "B")
	return plan, nil
}

// splitClauses breaks an objective into coarse work clauses on sentence and
// conjunction boundaries.
func splitClauses(objective string) []string {
	fields := strings.FieldsFunc(objective, func(r rune) bool {
		return r == '.' || r == ';' || r == ','
	})

	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, part := range strings.Split(field, " and ") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				clauses = append(clauses, trimmed)
			}
		}
	}

	if len(clauses) == 0 {
		clauses = append(clauses, strings.TrimSpace(objective))
	}
	return clauses
}
