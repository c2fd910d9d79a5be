// Package governance holds the static admission policy for the planner
// registry: allow/block lists, reliability thresholds, timeouts, and the
// structural scoring and drift knobs. The policy is loaded once at startup
// and is read-only afterwards.
package governance

import (
	"fmt"
	"time"
)

// Policy is the static governance policy applied to planner admission,
// selection, and post-hoc scoring. All fields are read-only after load.
type Policy struct {
	// Environment is the deployment environment tag (e.g. "production",
	// "staging", "dev"). Quarantine lifting is relaxed outside production.
	Environment string `mapstructure:"environment" yaml:"environment"`

	// AllowList restricts registration to the named planners when non-empty.
	AllowList []string `mapstructure:"allow_list" yaml:"allow_list"`

	// BlockList always rejects the named planners at registration.
	BlockList []string `mapstructure:"block_list" yaml:"block_list"`

	// DecayHalfLife is the exponential half-life applied to reliability
	// evidence so recent invocations dominate the score.
	DecayHalfLife time.Duration `mapstructure:"decay_half_life" yaml:"decay_half_life"`

	// MinReliability is the minimum decayed reliability a planner needs to
	// stay in a multi-candidate selection pool.
	MinReliability float64 `mapstructure:"min_reliability" yaml:"min_reliability"`

	// DefaultTimeout bounds an instrumented generation call when the
	// planner does not declare its own timeout.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`

	// SelfTestTimeout bounds the registration self-test.
	SelfTestTimeout time.Duration `mapstructure:"self_test_timeout" yaml:"self_test_timeout"`

	// DisableQuarantine skips the quarantine gate entirely. Intended for
	// tests and local development only.
	DisableQuarantine bool `mapstructure:"disable_quarantine" yaml:"disable_quarantine"`

	// Structural configures the post-hoc structural scoring pass.
	Structural StructuralPolicy `mapstructure:"structural" yaml:"structural"`

	// Drift configures output drift detection thresholds.
	Drift DriftPolicy `mapstructure:"drift" yaml:"drift"`
}

// StructuralPolicy configures plan-quality grading bonuses.
type StructuralPolicy struct {
	// Enabled turns the structural scoring pass on or off.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BaseScore is the bonus granted to any plan carrying a structural grade.
	BaseScore float64 `mapstructure:"base_score" yaml:"base_score"`

	// GradeBonuses maps a structural grade (e.g. "A", "B", "C") to an
	// additional bonus.
	GradeBonuses map[string]float64 `mapstructure:"grade_bonuses" yaml:"grade_bonuses"`

	// ReliabilityNudge scales the planner's reliability score into a small
	// additional component of the final score.
	ReliabilityNudge float64 `mapstructure:"reliability_nudge" yaml:"reliability_nudge"`
}

// DriftPolicy configures drift detection against a planner's own recent
// output baseline. Drift is an observability signal only.
type DriftPolicy struct {
	// MaxTaskCountRatio is the maximum relative change in task count before
	// a plan is flagged as drifted (0.5 means +/-50%).
	MaxTaskCountRatio float64 `mapstructure:"max_task_count_ratio" yaml:"max_task_count_ratio"`

	// MaxGradeDrop is the number of grade levels a plan may drop relative
	// to the previous snapshot before being flagged.
	MaxGradeDrop int `mapstructure:"max_grade_drop" yaml:"max_grade_drop"`
}

// IsProduction reports whether the policy targets a production environment.
func (p *Policy) IsProduction() bool {
	return p.Environment == "production"
}

// Allowed reports whether a planner name passes the allow/block lists.
// The block list wins over the allow list.
func (p *Policy) Allowed(name string) bool {
	for _, blocked := range p.BlockList {
		if blocked == name {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, allowed := range p.AllowList {
		if allowed == name {
			return true
		}
	}
	return false
}

// Validate checks the policy for internally consistent values.
func (p *Policy) Validate() error {
	if p.DecayHalfLife <= 0 {
		return fmt.Errorf("decay_half_life must be positive, got %s", p.DecayHalfLife)
	}
	if p.MinReliability < 0 || p.MinReliability > 1 {
		return fmt.Errorf("min_reliability must be in [0,1], got %f", p.MinReliability)
	}
	if p.DefaultTimeout <= 0 {
		return fmt.Errorf("default_timeout must be positive, got %s", p.DefaultTimeout)
	}
	if p.SelfTestTimeout <= 0 {
		return fmt.Errorf("self_test_timeout must be positive, got %s", p.SelfTestTimeout)
	}
	if p.Drift.MaxTaskCountRatio < 0 {
		return fmt.Errorf("drift.max_task_count_ratio must be non-negative, got %f", p.Drift.MaxTaskCountRatio)
	}
	if p.Drift.MaxGradeDrop < 0 {
		return fmt.Errorf("drift.max_grade_drop must be non-negative, got %d", p.Drift.MaxGradeDrop)
	}
	return nil
}
