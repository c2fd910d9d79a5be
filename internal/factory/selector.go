package factory

import (
	"math"
	"sort"
	"strings"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/planner"
	"github.com/helix-ai/helix/internal/registry"
)

// Composite score weights. Reliability dominates, capability fit second,
// with a small length-normalized contribution from the objective text.
const (
	weightReliability = 0.55
	weightCapability  = 0.30
	weightObjective   = 0.10

	// tierStep separates adjacent tiers; core gains, shadow loses.
	tierStep = 0.03

	// productionBonus rewards production-ready planners, doubled when the
	// caller prefers production.
	productionBonus = 0.05

	// objectiveNorm is the objective length at which the objective bonus
	// saturates.
	objectiveNorm = 256
)

// SelectionRequest describes what the caller needs from a planner.
type SelectionRequest struct {
	// Objective is the goal text the plan must address.
	Objective string

	// Capabilities optionally restricts ranking to capability fit.
	Capabilities []string

	// PreferProduction boosts production-ready planners in ranking.
	PreferProduction bool
}

// ScoredCandidate pairs a registry candidate with its composite score.
type ScoredCandidate struct {
	registry.Candidate
	Score float64
}

// Selector ranks eligible candidates by composite score. Ranking reads a
// point-in-time registry snapshot and needs no lock of its own.
type Selector struct {
	policy *governance.Policy
}

// NewSelector creates a selector governed by the given policy.
func NewSelector(policy *governance.Policy) *Selector {
	return &Selector{policy: policy}
}

// Rank scores and orders the pool: composite score descending, tie-broken
// by tier rank then name, so identical snapshots and requests always rank
// identically.
func (s *Selector) Rank(pool []registry.Candidate, req SelectionRequest) []ScoredCandidate {
	pool = s.applyReliabilityFloor(pool)

	scored := make([]ScoredCandidate, 0, len(pool))
	for _, c := range pool {
		scored = append(scored, ScoredCandidate{
			Candidate: c,
			Score:     CompositeScore(c, req),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Tier.Rank() != scored[j].Tier.Rank() {
			return scored[i].Tier.Rank() > scored[j].Tier.Rank()
		}
		return scored[i].Name < scored[j].Name
	})

	return scored
}

// Pick returns the top-ranked candidate, or false for an empty pool.
func (s *Selector) Pick(pool []registry.Candidate, req SelectionRequest) (ScoredCandidate, bool) {
	ranked := s.Rank(pool, req)
	if len(ranked) == 0 {
		return ScoredCandidate{}, false
	}
	return ranked[0], true
}

// applyReliabilityFloor drops candidates below the governance reliability
// floor, but only in multi-candidate pools and never to the point of
// emptying the pool.
func (s *Selector) applyReliabilityFloor(pool []registry.Candidate) []registry.Candidate {
	if len(pool) <= 1 || s.policy.MinReliability <= 0 {
		return pool
	}

	kept := make([]registry.Candidate, 0, len(pool))
	for _, c := range pool {
		if c.Reliability >= s.policy.MinReliability {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return pool
	}
	return kept
}

// CompositeScore computes the weighted selection score for one candidate:
// decayed reliability, capability overlap (0.5 when none requested), a
// small objective-length bonus, a tier adjustment, and a production-ready
// bonus. The result is clamped to [0,1].
func CompositeScore(c registry.Candidate, req SelectionRequest) float64 {
	score := weightReliability * c.Reliability
	score += weightCapability * capabilityOverlap(c.Capabilities, req.Capabilities)
	score += weightObjective * objectiveBonus(req.Objective)
	score += float64(c.Tier.Rank()-planner.TierExperimental.Rank()) * tierStep

	if c.ProductionReady {
		score += productionBonus
		if req.PreferProduction {
			score += productionBonus
		}
	}

	return math.Max(0, math.Min(1, score))
}

// capabilityOverlap measures how well the declared capability set covers
// the requested one. With no requested capabilities every candidate scores
// a neutral 0.5.
func capabilityOverlap(declared, requested []string) float64 {
	if len(requested) == 0 {
		return 0.5
	}

	have := make(map[string]bool, len(declared))
	for _, cap := range declared {
		have[strings.ToLower(cap)] = true
	}

	matched := 0
	for _, want := range requested {
		if have[strings.ToLower(want)] {
			matched++
		}
	}

	return float64(matched) / float64(len(requested))
}

// objectiveBonus is a length-normalized bonus from the objective text,
// saturating at objectiveNorm characters.
func objectiveBonus(objective string) float64 {
	return math.Min(1, float64(len(objective))/objectiveNorm)
}
