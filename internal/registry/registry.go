package registry

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/observability"
	"github.com/helix-ai/helix/internal/planner"
	"github.com/helix-ai/helix/internal/types"
)

// namePattern is the registration naming contract: lowercase, starts with a
// letter, at most 64 characters.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

// entry pairs a planner implementation with its record and mutable state.
type entry struct {
	record  Record
	planner planner.Planner
	state   ReliabilityState
}

// Registry is the process-wide map of planner name to implementation and
// state. It is built once by the composition root and passed by reference
// to the factory and selector; tests instantiate their own. A single lock
// guards every mutation of the record and reliability maps.
type Registry struct {
	mu      sync.Mutex
	policy  *governance.Policy
	log     *observability.TracedLogger
	entries map[string]*entry
}

// New creates an empty registry governed by the given policy.
func New(policy *governance.Policy, log *observability.TracedLogger) *Registry {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Registry{
		policy:  policy,
		log:     log.Named("registry"),
		entries: make(map[string]*entry),
	}
}

// Register admits a planner into the registry. Registration is silently
// skipped (returning false, never an error) when the name violates the
// naming pattern, is block-listed, is absent from a non-empty allow-list,
// or is already registered.
//
// On success the planner starts quarantined unless quarantine is disabled,
// and the self-test gate runs on its own goroutine joined with a hard
// timeout before the admission state is settled.
func (r *Registry) Register(ctx context.Context, p planner.Planner, origin string) bool {
	name := NormalizeName(p.Name())

	if !namePattern.MatchString(name) {
		r.log.Warn(ctx, "registration skipped: invalid planner name",
			"name", p.Name(), "origin", origin)
		return false
	}
	if !r.policy.Allowed(name) {
		r.log.Warn(ctx, "registration skipped: planner not allowed by governance",
			"name", name, "origin", origin)
		return false
	}

	rec := Record{
		Name:            name,
		Origin:          origin,
		Capabilities:    append([]string(nil), p.Capabilities()...),
		Tier:            p.Tier(),
		ProductionReady: p.ProductionReady(),
		RiskRating:      p.RiskRating(),
		Version:         p.Version(),
		RegisteredAt:    time.Now(),
	}

	r.mu.Lock()
	if _, exists := r.entries[name]; exists {
		r.mu.Unlock()
		r.log.Warn(ctx, "registration skipped: planner already registered",
			"name", name, "origin", origin)
		return false
	}
	e := &entry{
		record:  rec,
		planner: p,
		state:   newReliabilityState(),
	}
	e.state.Admission = AdmissionQuarantined
	if r.policy.DisableQuarantine {
		e.state.Admission = AdmissionActive
	}
	r.entries[name] = e
	r.mu.Unlock()

	// The self-test runs outside the lock so a slow test never blocks
	// concurrent registrations or selections.
	admission, outcome, reason := r.runGate(ctx, p)

	r.mu.Lock()
	e.state.SelfTest = outcome
	e.state.Admission = admission
	if admission == AdmissionQuarantined {
		e.state.QuarantineReason = reason
	}
	if outcome == SelfTestFailed {
		e.state.LastError = reason
	}
	r.mu.Unlock()

	r.log.Info(ctx, "planner registered",
		"name", name,
		"origin", origin,
		"tier", string(rec.Tier),
		"admission", string(admission),
		"self_test", string(outcome))
	return true
}

// runGate evaluates the self-test gate for a freshly registered planner and
// returns the resulting admission state, self-test outcome, and quarantine
// reason (empty when admitted).
func (r *Registry) runGate(ctx context.Context, p planner.Planner) (AdmissionState, SelfTestOutcome, string) {
	tester, hasTest := p.(planner.SelfTester)

	if !hasTest {
		// No self-test hook: pass only under relaxed policy, otherwise the
		// outcome stays unresolved and the planner is not eligible while
		// other candidates exist.
		if p.ProductionReady() || r.policy.DisableQuarantine {
			return AdmissionActive, SelfTestPassed, ""
		}
		return AdmissionIndeterminate, SelfTestIndeterminate, ""
	}

	if err := runBoundedSelfTest(ctx, tester, r.policy.SelfTestTimeout); err != nil {
		reason := truncateError(fmt.Sprintf("self-test failed: %v", err))
		if r.policy.DisableQuarantine {
			return AdmissionActive, SelfTestFailed, reason
		}
		return AdmissionQuarantined, SelfTestFailed, reason
	}

	if p.ProductionReady() || !r.policy.IsProduction() || r.policy.DisableQuarantine {
		return AdmissionActive, SelfTestPassed, ""
	}
	return AdmissionQuarantined, SelfTestPassed,
		"self-test passed but planner is not production-ready in a production environment"
}

// Get retrieves a registered planner by its normalized name. A quarantined
// planner yields an admission error; an unknown name yields a not-found
// error.
func (r *Registry) Get(name string) (planner.Planner, Record, error) {
	key := NormalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[key]
	if !exists {
		return nil, Record{}, planner.NewNotFoundError(key)
	}
	if e.state.Admission == AdmissionQuarantined {
		return nil, Record{}, planner.NewAdmissionError(key, e.state.QuarantineReason)
	}
	return e.planner, e.record, nil
}

// Eligible returns the point-in-time candidate pool for selection: all
// active planners, or the indeterminate ones when no planner is active.
// Indeterminate planners are never mixed into a multi-candidate pool of
// active ones.
func (r *Registry) Eligible() []Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]Candidate, 0, len(r.entries))
	indeterminate := make([]Candidate, 0)
	for _, e := range r.entries {
		c := Candidate{
			Name:            e.record.Name,
			Planner:         e.planner,
			Tier:            e.record.Tier,
			Capabilities:    e.record.Capabilities,
			ProductionReady: e.record.ProductionReady,
			Reliability:     e.state.Score,
		}
		switch e.state.Admission {
		case AdmissionActive:
			active = append(active, c)
		case AdmissionIndeterminate:
			indeterminate = append(indeterminate, c)
		}
	}

	pool := active
	if len(pool) == 0 {
		pool = indeterminate
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].Name < pool[j].Name })
	return pool
}

// RecordInvocation folds one completed generation call into the planner's
// reliability state. Updates for the same planner are serialized under the
// registry lock. A success clears quarantine only when the admission state
// is unresolved (indeterminate), never when a self-test explicitly failed.
func (r *Registry) RecordInvocation(ctx context.Context, name string, duration time.Duration, genErr error) {
	key := NormalizeName(name)

	r.mu.Lock()
	e, exists := r.entries[key]
	if !exists {
		r.mu.Unlock()
		return
	}

	ok := genErr == nil
	errText := ""
	if genErr != nil {
		errText = genErr.Error()
	}
	e.state.recordOutcome(time.Now(), duration, ok, r.policy.DecayHalfLife, errText)

	cleared := false
	if ok && e.state.Admission == AdmissionIndeterminate {
		e.state.Admission = AdmissionActive
		e.state.QuarantineReason = ""
		cleared = true
	}
	r.mu.Unlock()

	if cleared {
		r.log.Info(ctx, "quarantine cleared by live success", "name", key)
	}
}

// ReliabilityOf returns the current decayed reliability score for a planner.
func (r *Registry) ReliabilityOf(name string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[NormalizeName(name)]
	if !exists {
		return 0, false
	}
	return e.state.Score, true
}

// SnapshotOf returns the diagnostics snapshot for a single planner.
func (r *Registry) SnapshotOf(name string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[NormalizeName(name)]
	if !exists {
		return Snapshot{}, false
	}
	return snapshotEntry(e), true
}

// Snapshots returns the diagnostics snapshots for every registered planner,
// sorted by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snaps := make([]Snapshot, 0, len(r.entries))
	for _, e := range r.entries {
		snaps = append(snaps, snapshotEntry(e))
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Record.Name < snaps[j].Record.Name })
	return snaps
}

func snapshotEntry(e *entry) Snapshot {
	return Snapshot{
		Record:           e.record,
		Admission:        e.state.Admission,
		QuarantineReason: e.state.QuarantineReason,
		SelfTest:         e.state.SelfTest,
		Invocations:      e.state.Invocations,
		Failures:         e.state.Failures,
		AvgDurationMS:    e.state.AvgDuration.Milliseconds(),
		LastSuccess:      e.state.LastSuccess,
		LastError:        e.state.LastError,
		Reliability:      e.state.Score,
	}
}

// Stats is the aggregate view over the registry.
type Stats struct {
	Registered       int   `json:"registered" yaml:"registered"`
	Active           int   `json:"active" yaml:"active"`
	Quarantined      int   `json:"quarantined" yaml:"quarantined"`
	Indeterminate    int   `json:"indeterminate" yaml:"indeterminate"`
	TotalInvocations int64 `json:"total_invocations" yaml:"total_invocations"`
	TotalFailures    int64 `json:"total_failures" yaml:"total_failures"`
}

// Stats returns aggregate registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{Registered: len(r.entries)}
	for _, e := range r.entries {
		switch e.state.Admission {
		case AdmissionActive:
			stats.Active++
		case AdmissionQuarantined:
			stats.Quarantined++
		case AdmissionIndeterminate:
			stats.Indeterminate++
		}
		stats.TotalInvocations += e.state.Invocations
		stats.TotalFailures += e.state.Failures
	}
	return stats
}

// Health reports the aggregate health of the planner pool with the active
// planner count in the message.
func (r *Registry) Health(ctx context.Context) types.HealthStatus {
	stats := r.Stats()

	switch {
	case stats.Registered == 0:
		return types.Unhealthy("no planners registered")
	case stats.Active == 0:
		return types.Unhealthy(fmt.Sprintf("0/%d planners active", stats.Registered))
	case stats.Quarantined > 0 || stats.Indeterminate > 0:
		return types.Degraded(fmt.Sprintf("%d/%d planners active", stats.Active, stats.Registered))
	default:
		return types.Healthy(fmt.Sprintf("%d/%d planners active", stats.Active, stats.Registered))
	}
}

// Len returns the number of registered planners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// NormalizeName lowercases and trims a planner name into its registry key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
