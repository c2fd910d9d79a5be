package planner

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// defaultBridgeWorkers bounds how many blocking generation calls may run
// concurrently per adapted planner.
const defaultBridgeWorkers = 4

// SyncPlanner is implemented by planners that only expose a blocking
// generation call. AdaptSync bridges them into the asynchronous Planner
// contract.
type SyncPlanner interface {
	Name() string
	Version() string
	Capabilities() []string
	ProductionReady() bool
	Tier() Tier
	RiskRating() RiskRating
	DefaultTimeout() time.Duration

	// GenerateSync is the blocking generation call. It has no cancellation
	// channel of its own; the bridge abandons it when the context ends.
	GenerateSync(objective string, pctx PlanContext) (*Plan, error)
}

// AdaptSync wraps a blocking planner in the asynchronous Planner contract.
// Each call is handed to a worker goroutine gated by a bounded semaphore so
// blocking implementations cannot exhaust the scheduler. maxWorkers <= 0
// selects the default bound.
//
// When the wrapped planner implements SelfTester the returned Planner does
// too, so the registry self-test gate still sees the hook.
func AdaptSync(p SyncPlanner, maxWorkers int64) Planner {
	if maxWorkers <= 0 {
		maxWorkers = defaultBridgeWorkers
	}
	bridge := syncBridge{
		SyncPlanner: p,
		sem:         semaphore.NewWeighted(maxWorkers),
	}
	if _, ok := p.(SelfTester); ok {
		return &syncBridgeWithTest{bridge}
	}
	return &bridge
}

// syncBridge adapts GenerateSync to the async contract.
type syncBridge struct {
	SyncPlanner
	sem *semaphore.Weighted
}

type syncResult struct {
	plan *Plan
	err  error
}

// Generate acquires a worker slot, runs the blocking call on its own
// goroutine, and returns early if the context ends first. An abandoned call
// finishes in the background and releases its slot when done.
func (b *syncBridge) Generate(ctx context.Context, objective string, pctx PlanContext) (*Plan, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	ch := make(chan syncResult, 1)
	go func() {
		defer b.sem.Release(1)
		plan, err := b.GenerateSync(objective, pctx)
		ch <- syncResult{plan: plan, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.plan, res.err
	}
}

// syncBridgeWithTest additionally forwards the SelfTester hook.
type syncBridgeWithTest struct {
	syncBridge
}

func (b *syncBridgeWithTest) SelfTest(ctx context.Context) error {
	return b.SyncPlanner.(SelfTester).SelfTest(ctx)
}
