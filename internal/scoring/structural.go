// Package scoring implements the post-hoc plan quality passes: structural
// grading bonuses folded into a final selection score, and drift detection
// against each planner's own recent output baseline. Both passes produce
// metadata only; they never quarantine a planner.
package scoring

import (
	"strings"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/planner"
)

// StructuralScorer grades plans that carry an optional structural quality
// grade ("A", "B", "C") and combines the grade bonus with the base
// selection score into a final score.
type StructuralScorer struct {
	policy governance.StructuralPolicy
}

// NewStructuralScorer creates a scorer with the given policy.
func NewStructuralScorer(policy governance.StructuralPolicy) *StructuralScorer {
	return &StructuralScorer{policy: policy}
}

// Bonus computes the structural bonus for a plan: the base structural
// score, plus the grade-specific bonus, plus a small reliability nudge.
// Returns false when structural scoring is disabled or the plan carries no
// grade.
func (s *StructuralScorer) Bonus(plan *planner.Plan, reliability float64) (float64, bool) {
	if !s.policy.Enabled {
		return 0, false
	}

	grade := strings.ToUpper(plan.StructuralGrade())
	if grade == "" {
		return 0, false
	}

	bonus := s.policy.BaseScore
	bonus += s.policy.GradeBonuses[grade]
	bonus += reliability * s.policy.ReliabilityNudge
	return bonus, true
}

// Final combines the base selection score with a structural bonus, clamped
// to [0,1].
func (s *StructuralScorer) Final(selectionScore, bonus float64) float64 {
	final := selectionScore + bonus
	if final < 0 {
		return 0
	}
	if final > 1 {
		return 1
	}
	return final
}
