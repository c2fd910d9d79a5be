package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-ai/helix/internal/factory"
	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/planners"
	"github.com/helix-ai/helix/internal/registry"
)

func builtinFactory(t *testing.T) *factory.Factory {
	t.Helper()
	policy := governance.DefaultPolicy()
	policy.Environment = "dev"
	reg := registry.New(policy, nil)
	return factory.New(reg, policy, nil, planners.Builtin())
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		objective string
		want      int
	}{
		{"", 0},
		{"ship it", 1},
		{"build and test", 2},
		{"build, test, deploy", 3},
		{"plan the schema; write migrations and backfill. verify counts", 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Complexity(tt.objective), "objective: %q", tt.objective)
	}
}

func TestRoute(t *testing.T) {
	f := builtinFactory(t)

	assert.Equal(t, "linear", Route(f, "ship the release").Name())
	assert.Equal(t, "recursive",
		Route(f, "design the schema, write migrations, backfill data, and verify counts").Name())
}

func TestLinearStrategy_ProposesSequentialPlan(t *testing.T) {
	s := NewLinearStrategy(builtinFactory(t))

	plan, err := s.Propose(context.Background(), "ship the release")
	require.NoError(t, err)
	assert.NoError(t, plan.Validate())
	assert.NotEmpty(t, plan.Tasks)
}

func TestRecursiveStrategy_ProposesDecomposedPlan(t *testing.T) {
	s := NewRecursiveStrategy(builtinFactory(t))

	plan, err := s.Propose(context.Background(),
		"design the schema, write migrations, backfill data, verify counts")
	require.NoError(t, err)
	assert.NoError(t, plan.Validate())

	order, err := plan.ExecutionOrder()
	require.NoError(t, err)
	assert.Equal(t, len(plan.Tasks), len(order))
}

func TestFallbackStrategy_AlwaysValid(t *testing.T) {
	s := NewFallbackStrategy()

	plan, err := s.Propose(context.Background(), "anything at all")
	require.NoError(t, err)
	require.NoError(t, plan.Validate())
	assert.Len(t, plan.Tasks, 3)

	order, err := plan.ExecutionOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"clarify", "execute", "verify"}, order)
}

func TestFallbackStrategy_EmptyObjective(t *testing.T) {
	s := NewFallbackStrategy()

	plan, err := s.Propose(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "unspecified objective", plan.Objective)
	assert.NoError(t, plan.Validate())
}
