package planner

import (
	"fmt"
	"time"

	"github.com/helix-ai/helix/internal/types"
)

// Metadata keys written by the instrumentation layer after generation.
// Each key is written at most once per plan.
const (
	MetaDurationMS      = "duration_ms"
	MetaNodeCount       = "node_count"
	MetaReliability     = "reliability_score"
	MetaSelectionScore  = "selection_score"
	MetaStructuralGrade = "structural_grade"
	MetaStructuralBonus = "structural_bonus"
	MetaFinalScore      = "final_score"
	MetaDriftDetected   = "drift_detected"
)

// Task is a single unit of work in a plan. Dependency edges reference the
// IDs of other tasks in the same plan.
type Task struct {
	// ID uniquely identifies the task within its plan.
	ID string `json:"id" yaml:"id"`

	// Description is the human-readable work statement.
	Description string `json:"description" yaml:"description"`

	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Plan is the artifact produced by a planner: an objective, an ordered task
// list with dependency edges, and a metadata map enriched after generation.
// Tasks are append-only during construction by the owning planner; metadata
// fields are write-once.
type Plan struct {
	// ID is the unique identifier for this plan.
	ID types.ID `json:"id" yaml:"id"`

	// Planner is the name of the planner that produced the plan.
	Planner string `json:"planner" yaml:"planner"`

	// Objective is the goal the plan addresses.
	Objective string `json:"objective" yaml:"objective"`

	// Tasks contains the ordered task list.
	Tasks []Task `json:"tasks" yaml:"tasks"`

	// Metadata is enriched by the instrumentation layer after generation.
	// Use PutMetadata to preserve write-once semantics.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// CreatedAt is when the plan was generated.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewPlan creates an empty plan for the given planner and objective.
func NewPlan(plannerName, objective string) *Plan {
	return &Plan{
		ID:        types.NewID(),
		Planner:   plannerName,
		Objective: objective,
		Tasks:     make([]Task, 0),
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// AddTask appends a task to the plan. Tasks are append-only.
func (p *Plan) AddTask(id, description string, dependsOn ...string) {
	p.Tasks = append(p.Tasks, Task{
		ID:          id,
		Description: description,
		DependsOn:   dependsOn,
	})
}

// PutMetadata writes a metadata field if it has not been written before.
// Returns false when the key already exists; the existing value is kept.
func (p *Plan) PutMetadata(key string, value any) bool {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	if _, exists := p.Metadata[key]; exists {
		return false
	}
	p.Metadata[key] = value
	return true
}

// StructuralGrade returns the optional quality grade attached to the plan
// ("A", "B", "C"), or empty when the planner did not grade its output.
func (p *Plan) StructuralGrade() string {
	if p.Metadata == nil {
		return ""
	}
	if grade, ok := p.Metadata[MetaStructuralGrade].(string); ok {
		return grade
	}
	return ""
}

// Validate checks the plan against the structural output contract:
// non-empty objective, at least one task, unique non-empty task IDs, and
// dependency edges that resolve within the plan.
func (p *Plan) Validate() error {
	if p.Objective == "" {
		return NewValidationError("plan is missing an objective")
	}
	if len(p.Tasks) == 0 {
		return NewValidationError("plan contains no tasks")
	}

	seen := make(map[string]bool, len(p.Tasks))
	for _, task := range p.Tasks {
		if task.ID == "" {
			return NewValidationError("plan contains a task with an empty ID")
		}
		if seen[task.ID] {
			return NewValidationError(fmt.Sprintf("duplicate task ID %q", task.ID))
		}
		seen[task.ID] = true
	}

	for _, task := range p.Tasks {
		for _, dep := range task.DependsOn {
			if !seen[dep] {
				return NewValidationError(
					fmt.Sprintf("task %q depends on unknown task %q", task.ID, dep))
			}
		}
	}

	return nil
}

// ExecutionOrder returns the task IDs in dependency order using Kahn's
// algorithm. Returns a validation error when the dependency graph contains
// a cycle.
func (p *Plan) ExecutionOrder() ([]string, error) {
	inDegree := make(map[string]int, len(p.Tasks))
	adjacency := make(map[string][]string, len(p.Tasks))

	for _, task := range p.Tasks {
		inDegree[task.ID] = len(task.DependsOn)
		for _, dep := range task.DependsOn {
			adjacency[dep] = append(adjacency[dep], task.ID)
		}
	}

	// Seed the queue in task order so the result is deterministic.
	queue := make([]string, 0, len(p.Tasks))
	for _, task := range p.Tasks {
		if inDegree[task.ID] == 0 {
			queue = append(queue, task.ID)
		}
	}

	result := make([]string, 0, len(p.Tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, dependent := range adjacency[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(p.Tasks) {
		return nil, NewValidationError(
			fmt.Sprintf("circular dependency detected: ordered %d of %d tasks",
				len(result), len(p.Tasks)))
	}

	return result, nil
}
