package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_ValidateOK(t *testing.T) {
	plan := NewPlan("test", "ship the release")
	plan.AddTask("build", "build artifacts")
	plan.AddTask("test", "run the suite", "build")
	plan.AddTask("deploy", "deploy to production", "test")

	assert.NoError(t, plan.Validate())
}

func TestPlan_ValidateFailures(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Plan
		want  string
	}{
		{
			name: "missing objective",
			build: func() *Plan {
				plan := NewPlan("test", "")
				plan.AddTask("a", "task")
				return plan
			},
			want: "missing an objective",
		},
		{
			name: "no tasks",
			build: func() *Plan {
				return NewPlan("test", "do something")
			},
			want: "no tasks",
		},
		{
			name: "empty task ID",
			build: func() *Plan {
				plan := NewPlan("test", "do something")
				plan.AddTask("", "task")
				return plan
			},
			want: "empty ID",
		},
		{
			name: "duplicate task ID",
			build: func() *Plan {
				plan := NewPlan("test", "do something")
				plan.AddTask("a", "one")
				plan.AddTask("a", "two")
				return plan
			},
			want: "duplicate task ID",
		},
		{
			name: "dangling dependency",
			build: func() *Plan {
				plan := NewPlan("test", "do something")
				plan.AddTask("a", "one", "ghost")
				return plan
			},
			want: "unknown task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, NewError(ErrorTypeValidation, ""))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlan_ExecutionOrder(t *testing.T) {
	plan := NewPlan("test", "compound objective")
	plan.AddTask("c", "third", "b")
	plan.AddTask("a", "first")
	plan.AddTask("b", "second", "a")

	order, err := plan.ExecutionOrder()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestPlan_ExecutionOrderDetectsCycle(t *testing.T) {
	plan := NewPlan("test", "looping objective")
	plan.AddTask("a", "first", "b")
	plan.AddTask("b", "second", "a")

	_, err := plan.ExecutionOrder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestPlan_ExecutionOrderDeterministic(t *testing.T) {
	plan := NewPlan("test", "wide objective")
	plan.AddTask("root", "root")
	plan.AddTask("x", "branch x", "root")
	plan.AddTask("y", "branch y", "root")
	plan.AddTask("z", "branch z", "root")

	first, err := plan.ExecutionOrder()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := plan.ExecutionOrder()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlan_MetadataWriteOnce(t *testing.T) {
	plan := NewPlan("test", "objective")

	assert.True(t, plan.PutMetadata(MetaFinalScore, 0.8))
	assert.False(t, plan.PutMetadata(MetaFinalScore, 0.1))
	assert.Equal(t, 0.8, plan.Metadata[MetaFinalScore])
}

func TestPlan_StructuralGrade(t *testing.T) {
	plan := NewPlan("test", "objective")
	assert.Equal(t, "", plan.StructuralGrade())

	plan.PutMetadata(MetaStructuralGrade, "A")
	assert.Equal(t, "A", plan.StructuralGrade())
}
