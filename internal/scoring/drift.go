package scoring

import (
	"math"
	"sync"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/planner"
)

// baseline is the last observed output shape for one planner.
type baseline struct {
	taskCount int
	grade     string
}

// DriftDetector compares each plan's task count and structural grade to the
// last snapshot recorded for the same planner. A flagged plan signals a
// regression in output shape; the flag is metadata only.
type DriftDetector struct {
	mu        sync.Mutex
	policy    governance.DriftPolicy
	baselines map[string]baseline
}

// NewDriftDetector creates a detector with the given thresholds.
func NewDriftDetector(policy governance.DriftPolicy) *DriftDetector {
	return &DriftDetector{
		policy:    policy,
		baselines: make(map[string]baseline),
	}
}

// Observe records the plan as the planner's new baseline and reports
// whether it drifted from the previous one: a task-count change beyond the
// configured ratio, or a grade drop beyond the configured number of levels.
// The first observation for a planner never drifts.
func (d *DriftDetector) Observe(plannerName string, plan *planner.Plan) bool {
	current := baseline{
		taskCount: len(plan.Tasks),
		grade:     plan.StructuralGrade(),
	}

	d.mu.Lock()
	previous, seen := d.baselines[plannerName]
	d.baselines[plannerName] = current
	d.mu.Unlock()

	if !seen {
		return false
	}

	if previous.taskCount > 0 && d.policy.MaxTaskCountRatio > 0 {
		change := math.Abs(float64(current.taskCount-previous.taskCount)) / float64(previous.taskCount)
		if change > d.policy.MaxTaskCountRatio {
			return true
		}
	}

	if previous.grade != "" && current.grade != "" {
		drop := gradeLevel(previous.grade) - gradeLevel(current.grade)
		if drop > d.policy.MaxGradeDrop {
			return true
		}
	}

	return false
}

// Reset clears all recorded baselines.
func (d *DriftDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baselines = make(map[string]baseline)
}

// gradeLevel orders structural grades so drops can be counted in levels.
func gradeLevel(grade string) int {
	switch grade {
	case "A", "a":
		return 3
	case "B", "b":
		return 2
	case "C", "c":
		return 1
	default:
		return 0
	}
}
