// Package strategy holds the thin policy layer above the factory: linear
// and recursive selection strategies routed by objective complexity, a
// minimal always-available fallback, and the fault-tolerant wrapper that
// circuit-breaks a failing primary onto the fallback.
package strategy

import (
	"context"
	"strings"

	"github.com/helix-ai/helix/internal/factory"
	"github.com/helix-ai/helix/internal/planner"
)

// complexClauseThreshold is the clause count above which an objective is
// routed to the recursive strategy.
const complexClauseThreshold = 3

// Strategy is a thin policy object that picks a planner for an objective
// and produces a plan.
type Strategy interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string

	// Propose generates a plan for the objective.
	Propose(ctx context.Context, objective string) (*planner.Plan, error)
}

// LinearStrategy requests a sequential planner: appropriate for simple,
// low-clause objectives.
type LinearStrategy struct {
	factory *factory.Factory
}

// NewLinearStrategy creates a linear strategy over the factory.
func NewLinearStrategy(f *factory.Factory) *LinearStrategy {
	return &LinearStrategy{factory: f}
}

func (s *LinearStrategy) Name() string { return "linear" }

// Propose selects the best sequential-capable planner and generates.
func (s *LinearStrategy) Propose(ctx context.Context, objective string) (*planner.Plan, error) {
	return s.factory.GeneratePlan(ctx, factory.SelectionRequest{
		Objective:        objective,
		Capabilities:     []string{"sequential"},
		PreferProduction: true,
	}, nil)
}

// RecursiveStrategy requests a decomposition-capable planner: appropriate
// for compound objectives with many clauses.
type RecursiveStrategy struct {
	factory *factory.Factory
}

// NewRecursiveStrategy creates a recursive strategy over the factory.
func NewRecursiveStrategy(f *factory.Factory) *RecursiveStrategy {
	return &RecursiveStrategy{factory: f}
}

func (s *RecursiveStrategy) Name() string { return "recursive" }

// Propose selects the best decomposition-capable planner and generates.
func (s *RecursiveStrategy) Propose(ctx context.Context, objective string) (*planner.Plan, error) {
	return s.factory.GeneratePlan(ctx, factory.SelectionRequest{
		Objective:    objective,
		Capabilities: []string{"decomposition"},
	}, nil)
}

// Complexity counts the coarse work clauses in an objective. Used to route
// between the linear and recursive strategies.
func Complexity(objective string) int {
	count := 0
	for _, field := range strings.FieldsFunc(objective, func(r rune) bool {
		return r == '.' || r == ';' || r == ','
	}) {
		for _, part := range strings.Split(field, " and ") {
			if strings.TrimSpace(part) != "" {
				count++
			}
		}
	}
	return count
}

// Route picks the linear strategy for simple objectives and the recursive
// one for compound objectives.
func Route(f *factory.Factory, objective string) Strategy {
	if Complexity(objective) > complexClauseThreshold {
		return NewRecursiveStrategy(f)
	}
	return NewLinearStrategy(f)
}
