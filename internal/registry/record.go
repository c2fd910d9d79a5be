// Package registry implements admission control for pluggable planners:
// a process-local registry of planner implementations, per-planner rolling
// reliability statistics with time decay, and a quarantine state machine
// gated by a bounded self-test at registration. Registry state is
// intentionally not persisted; it is rebuilt at boot.
package registry

import (
	"time"

	"github.com/helix-ai/helix/internal/planner"
)

// AdmissionState is the quarantine state of a registered planner.
type AdmissionState string

const (
	// AdmissionActive means the planner is admitted to multi-candidate
	// selection.
	AdmissionActive AdmissionState = "active"

	// AdmissionQuarantined means the planner is excluded from selection;
	// the reason is kept alongside the state.
	AdmissionQuarantined AdmissionState = "quarantined"

	// AdmissionIndeterminate means the planner registered without a
	// self-test hook and has not yet earned admission. Indeterminate
	// planners are only selectable when no active planner exists.
	AdmissionIndeterminate AdmissionState = "indeterminate"
)

// SelfTestOutcome records the result of the registration self-test.
type SelfTestOutcome string

const (
	SelfTestPassed        SelfTestOutcome = "passed"
	SelfTestFailed        SelfTestOutcome = "failed"
	SelfTestIndeterminate SelfTestOutcome = "indeterminate"
)

// Record is the immutable identity of a registered planner. It is created
// once at registration; mutable health lives in ReliabilityState.
type Record struct {
	// Name is the unique, case-normalized registry key.
	Name string `json:"name" yaml:"name"`

	// Origin identifies the module or tag the planner came from.
	Origin string `json:"origin" yaml:"origin"`

	// Capabilities is the declared capability set.
	Capabilities []string `json:"capabilities" yaml:"capabilities"`

	// Tier is the declared trust tier.
	Tier planner.Tier `json:"tier" yaml:"tier"`

	// ProductionReady reports whether the planner is cleared for
	// production traffic.
	ProductionReady bool `json:"production_ready" yaml:"production_ready"`

	// RiskRating is the declared operational risk.
	RiskRating planner.RiskRating `json:"risk_rating" yaml:"risk_rating"`

	// Version is the declared planner version, if any.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// RegisteredAt is when the planner entered the registry.
	RegisteredAt time.Time `json:"registered_at" yaml:"registered_at"`
}

// Candidate is a point-in-time view of an admitted planner handed to the
// selector for ranking. Health is revalidated only when selection executes.
type Candidate struct {
	Name            string
	Planner         planner.Planner
	Tier            planner.Tier
	Capabilities    []string
	ProductionReady bool
	Reliability     float64
}
