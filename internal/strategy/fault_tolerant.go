package strategy

import (
	"context"
	"sync"

	"github.com/helix-ai/helix/internal/observability"
	"github.com/helix-ai/helix/internal/planner"
)

// DefaultFailureThreshold opens the breaker after this many consecutive
// primary failures when no threshold is configured.
const DefaultFailureThreshold = 3

// BreakerState is the current state of the fault-tolerant wrapper.
type BreakerState int

const (
	// BreakerClosed means the primary strategy is invoked normally.
	BreakerClosed BreakerState = iota

	// BreakerOpen means the primary is skipped and the fallback serves
	// every call until an explicit Reset.
	BreakerOpen
)

// String returns a human-readable representation of the breaker state.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FaultTolerantStrategy wraps a primary strategy (selection + generation)
// with an always-available fallback behind a circuit breaker.
//
// While closed, the primary is invoked; a failure increments the counter
// and serves the fallback for that call, and the breaker opens once the
// threshold is reached. While open, the primary is skipped entirely. A
// successful primary call resets the counter and closes the breaker; an
// open breaker is closed again only by Reset, since the primary is never
// probed while open.
//
// Callers always receive a valid plan as long as the fallback holds: worst
// case is available but degraded.
type FaultTolerantStrategy struct {
	mu        sync.Mutex
	primary   Strategy
	fallback  Strategy
	threshold int
	failures  int
	state     BreakerState
	log       *observability.TracedLogger
}

// NewFaultTolerantStrategy wraps the primary with the fallback. A threshold
// of zero or less selects DefaultFailureThreshold.
func NewFaultTolerantStrategy(primary, fallback Strategy, threshold int, log *observability.TracedLogger) *FaultTolerantStrategy {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if log == nil {
		log = observability.NopLogger()
	}
	return &FaultTolerantStrategy{
		primary:   primary,
		fallback:  fallback,
		threshold: threshold,
		state:     BreakerClosed,
		log:       log.Named("fault_tolerant"),
	}
}

func (s *FaultTolerantStrategy) Name() string { return "fault_tolerant" }

// Propose serves the primary while the breaker is closed and the fallback
// otherwise. The primary's error is absorbed, logged, and replaced by the
// fallback's output.
func (s *FaultTolerantStrategy) Propose(ctx context.Context, objective string) (*planner.Plan, error) {
	s.mu.Lock()
	open := s.state == BreakerOpen
	s.mu.Unlock()

	if !open {
		plan, err := s.primary.Propose(ctx, objective)
		if err == nil {
			s.mu.Lock()
			s.failures = 0
			s.state = BreakerClosed
			s.mu.Unlock()
			return plan, nil
		}

		s.mu.Lock()
		s.failures++
		opened := false
		if s.failures >= s.threshold && s.state == BreakerClosed {
			s.state = BreakerOpen
			opened = true
		}
		s.mu.Unlock()

		s.log.Warn(ctx, "primary strategy failed, serving fallback",
			"primary", s.primary.Name(),
			"error", err.Error(),
			"failures", s.failures,
			"breaker_opened", opened)
	}

	return s.fallback.Propose(ctx, objective)
}

// State returns the current breaker state.
func (s *FaultTolerantStrategy) State() BreakerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failures returns the consecutive primary failure count.
func (s *FaultTolerantStrategy) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// Reset closes the breaker and clears the failure counter. Intended for
// operators after the primary's planners have been healed.
func (s *FaultTolerantStrategy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
	s.state = BreakerClosed
}
