// Package planner defines the pluggable planning contract: the Planner
// interface consumed by the registry and factory, the Plan data model, and
// the typed error taxonomy shared across the selection engine.
package planner

import (
	"context"
	"time"
)

// Tier classifies how much trust a planner has earned. Core planners rank
// above experimental ones, which rank above shadow deployments.
type Tier string

const (
	TierCore         Tier = "core"
	TierExperimental Tier = "experimental"
	TierShadow       Tier = "shadow"
)

// Rank returns the ordering weight of the tier. Higher is preferred.
func (t Tier) Rank() int {
	switch t {
	case TierCore:
		return 2
	case TierExperimental:
		return 1
	case TierShadow:
		return 0
	default:
		return -1
	}
}

// IsValid checks if the Tier is a known value.
func (t Tier) IsValid() bool {
	return t.Rank() >= 0
}

// RiskRating is the declared operational risk of running a planner.
type RiskRating string

const (
	RiskLow    RiskRating = "low"
	RiskMedium RiskRating = "medium"
	RiskHigh   RiskRating = "high"
)

// PlanContext carries optional caller-supplied context for a generation
// call: hints, prior results, or environment details the planner may use.
type PlanContext map[string]any

// Planner is the contract every pluggable planning strategy implements.
// The contract is asynchronous: Generate must honor context cancellation.
// Blocking implementations should be adapted with AdaptSync.
type Planner interface {
	// Name is the unique registry key. Names are case-normalized at
	// registration and must match the registry naming pattern.
	Name() string

	// Version is an optional semantic version string.
	Version() string

	// Capabilities declares what the planner can do; matched against
	// caller-requested capabilities during selection.
	Capabilities() []string

	// ProductionReady reports whether the planner is cleared for
	// production traffic. Affects quarantine lifting and scoring.
	ProductionReady() bool

	// Tier is the declared trust tier.
	Tier() Tier

	// RiskRating is the declared operational risk.
	RiskRating() RiskRating

	// DefaultTimeout bounds a single generation call. Zero means the
	// governance default applies.
	DefaultTimeout() time.Duration

	// Generate converts an objective into a dependency-ordered task plan.
	Generate(ctx context.Context, objective string, pctx PlanContext) (*Plan, error)
}

// SelfTester is optionally implemented by planners that ship a health
// check. The registry runs it once at registration under a hard timeout.
type SelfTester interface {
	SelfTest(ctx context.Context) error
}

// Provider constructs a planner implementation. The factory's bootstrap
// routine iterates providers and registers each result explicitly, keeping
// registration free of import-order side effects. A provider error is
// logged and skipped, never fatal.
type Provider func() (Planner, error)

// Base carries the declarative planner metadata and implements everything
// in the Planner contract except Generate. Concrete planners embed it.
type Base struct {
	PlannerName    string
	PlannerVersion string
	Caps           []string
	Production     bool
	PlannerTier    Tier
	Risk           RiskRating
	Timeout        time.Duration
}

func (b Base) Name() string                  { return b.PlannerName }
func (b Base) Version() string               { return b.PlannerVersion }
func (b Base) Capabilities() []string        { return b.Caps }
func (b Base) ProductionReady() bool         { return b.Production }
func (b Base) Tier() Tier                    { return b.PlannerTier }
func (b Base) RiskRating() RiskRating        { return b.Risk }
func (b Base) DefaultTimeout() time.Duration { return b.Timeout }
