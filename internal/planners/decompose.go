package planners

import (
	"context"
	"fmt"
	"strings"

	"github.com/helix-ai/helix/internal/planner"
)

// decomposeWorkers bounds concurrent blocking generations for the adapted
// decompose planner.
const decomposeWorkers = 2

// Decompose recursively splits an objective into sub-objectives and emits a
// dependency tree instead of a flat chain. The implementation is blocking
// and is bridged into the async contract by AdaptSync.
type Decompose struct {
	planner.Base
}

// NewDecompose constructs the decompose planner, adapted to the async
// planner contract through the bounded sync bridge.
func NewDecompose() (planner.Planner, error) {
	d := &Decompose{
		Base: planner.Base{
			PlannerName:    "decompose",
			PlannerVersion: "0.4.1",
			Caps:           []string{"decomposition", "recursive"},
			Production:     false,
			PlannerTier:    planner.TierExperimental,
			Risk:           planner.RiskMedium,
		},
	}
	return planner.AdaptSync(d, decomposeWorkers), nil
}

// GenerateSync splits the objective into clauses and each clause into
// sub-steps; sub-steps depend on their clause task, and a final integration
// task depends on every clause.
func (d *Decompose) GenerateSync(objective string, pctx planner.PlanContext) (*planner.Plan, error) {
	if strings.TrimSpace(objective) == "" {
		return nil, fmt.Errorf("objective is empty")
	}

	plan := planner.NewPlan(d.Name(), objective)
	plan.AddTask("scope", "Scope the objective and identify major parts")

	clauses := splitClauses(objective)
	clauseIDs := make([]string, 0, len(clauses))
	for i, clause := range clauses {
		clauseID := fmt.Sprintf("part-%d", i+1)
		plan.AddTask(clauseID, clause, "scope")
		clauseIDs = append(clauseIDs, clauseID)

		for j, sub := range decomposeClause(clause) {
			plan.AddTask(fmt.Sprintf("%s-%d", clauseID, j+1), sub, clauseID)
		}
	}

	plan.AddTask("integrate", "Integrate all parts into the final result", clauseIDs...)

	grade := "C"
	switch {
	case len(clauses) >= 3:
		grade = "A"
	case len(clauses) == 2:
		grade = "B"
	}
	plan.PutMetadata(planner.MetaStructuralGrade, grade)
	return plan, nil
}

// SelfTest generates a plan for a known objective and validates its shape.
func (d *Decompose) SelfTest(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	plan, err := d.GenerateSync("inventory the system, identify gaps and propose fixes", nil)
	if err != nil {
		return fmt.Errorf("self-test generation failed: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("self-test plan invalid: %w", err)
	}
	if _, err := plan.ExecutionOrder(); err != nil {
		return fmt.Errorf("self-test plan not orderable: %w", err)
	}
	return nil
}

// decomposeClause produces the fixed sub-steps for one work clause.
func decomposeClause(clause string) []string {
	return []string{
		fmt.Sprintf("Gather inputs for: %s", clause),
		fmt.Sprintf("Carry out: %s", clause),
		fmt.Sprintf("Check outcome of: %s", clause),
	}
}
