package factory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/planner"
	"github.com/helix-ai/helix/internal/registry"
)

type fakePlanner struct {
	planner.Base
	generate func(ctx context.Context, objective string, pctx planner.PlanContext) (*planner.Plan, error)
}

func (f *fakePlanner) Generate(ctx context.Context, objective string, pctx planner.PlanContext) (*planner.Plan, error) {
	if f.generate != nil {
		return f.generate(ctx, objective, pctx)
	}
	plan := planner.NewPlan(f.Name(), objective)
	plan.AddTask("step-1", "do the work")
	return plan, nil
}

type failingTester struct {
	fakePlanner
}

func (f *failingTester) SelfTest(ctx context.Context) error {
	return errors.New("dependency unavailable")
}

func newFake(name string, tier planner.Tier, prod bool, caps ...string) *fakePlanner {
	return &fakePlanner{Base: planner.Base{
		PlannerName: name,
		PlannerTier: tier,
		Production:  prod,
		Caps:        caps,
	}}
}

func providerFor(p planner.Planner) Provider {
	return Provider{Origin: "test", Build: func() (planner.Planner, error) { return p, nil }}
}

func newTestFactory(t *testing.T, policy *governance.Policy, providers ...Provider) (*Factory, *registry.Registry) {
	t.Helper()
	if policy == nil {
		policy = governance.DefaultPolicy()
		policy.SelfTestTimeout = 100 * time.Millisecond
	}
	reg := registry.New(policy, nil)
	return New(reg, policy, nil, providers), reg
}

func TestFactory_SelectPicksBestCandidate(t *testing.T) {
	f, _ := newTestFactory(t, nil,
		providerFor(newFake("core-prod", planner.TierCore, true)),
		providerFor(newFake("shadow", planner.TierShadow, true)),
	)

	p, best, err := f.Select(context.Background(), SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	assert.Equal(t, "core-prod", p.Name())
	assert.Equal(t, "core-prod", best.Name)
	assert.Greater(t, best.Score, 0.0)
}

func TestFactory_SelectCachesInstance(t *testing.T) {
	f, _ := newTestFactory(t, nil, providerFor(newFake("alpha", planner.TierCore, true)))
	ctx := context.Background()

	p1, _, err := f.Select(ctx, SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	p2, _, err := f.Select(ctx, SelectionRequest{Objective: "objective"})
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, f.Stats().CacheSize)
}

func TestFactory_SelectWithNoPlannersSelfHealsThenFails(t *testing.T) {
	broken := Provider{Origin: "test", Build: func() (planner.Planner, error) {
		return nil, errors.New("constructor exploded")
	}}
	f, _ := newTestFactory(t, nil, broken)

	_, _, err := f.Select(context.Background(), SelectionRequest{Objective: "objective"})
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeNoActivePlanners, ""))
	assert.Equal(t, int64(1), f.Stats().SelfHeals)
}

func TestFactory_SelfHealRecoversFlappingProvider(t *testing.T) {
	var calls atomic.Int64
	flapping := Provider{Origin: "test", Build: func() (planner.Planner, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("not ready yet")
		}
		return newFake("late", planner.TierCore, true), nil
	}}
	f, _ := newTestFactory(t, nil, flapping)

	p, _, err := f.Select(context.Background(), SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	assert.Equal(t, "late", p.Name())
	assert.Equal(t, int64(1), f.Stats().SelfHeals)
}

func TestFactory_DiscoverIdempotent(t *testing.T) {
	var builds atomic.Int64
	counted := Provider{Origin: "test", Build: func() (planner.Planner, error) {
		builds.Add(1)
		return newFake("alpha", planner.TierCore, true), nil
	}}
	f, _ := newTestFactory(t, nil, counted)
	ctx := context.Background()

	f.Discover(ctx)
	f.Discover(ctx)
	assert.Equal(t, int64(1), builds.Load())
	assert.Equal(t, int64(1), f.Stats().Discoveries)
}

func TestFactory_GeneratePlanEnrichesMetadata(t *testing.T) {
	p := newFake("alpha", planner.TierCore, true)
	p.generate = func(_ context.Context, objective string, _ planner.PlanContext) (*planner.Plan, error) {
		plan := planner.NewPlan("alpha", objective)
		plan.AddTask("a", "first")
		plan.AddTask("b", "second", "a")
		plan.PutMetadata(planner.MetaStructuralGrade, "B")
		return plan, nil
	}
	f, _ := newTestFactory(t, nil, providerFor(p))

	plan, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "two step objective"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, plan.Metadata[planner.MetaNodeCount])
	assert.Contains(t, plan.Metadata, planner.MetaDurationMS)
	assert.Contains(t, plan.Metadata, planner.MetaReliability)
	assert.Contains(t, plan.Metadata, planner.MetaSelectionScore)
	assert.Contains(t, plan.Metadata, planner.MetaStructuralBonus)
	assert.Equal(t, false, plan.Metadata[planner.MetaDriftDetected])

	final, ok := plan.Metadata[planner.MetaFinalScore].(float64)
	require.True(t, ok)
	selection := plan.Metadata[planner.MetaSelectionScore].(float64)
	assert.GreaterOrEqual(t, final, selection)
	assert.LessOrEqual(t, final, 1.0)
}

func TestFactory_PlannerMetadataWins(t *testing.T) {
	p := newFake("alpha", planner.TierCore, true)
	p.generate = func(_ context.Context, objective string, _ planner.PlanContext) (*planner.Plan, error) {
		plan := planner.NewPlan("alpha", objective)
		plan.AddTask("a", "only")
		plan.PutMetadata(planner.MetaFinalScore, 0.42)
		return plan, nil
	}
	f, _ := newTestFactory(t, nil, providerFor(p))

	plan, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "objective"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.42, plan.Metadata[planner.MetaFinalScore])
}

func TestFactory_TimeoutBoundsNonCooperativePlanner(t *testing.T) {
	p := newFake("slow", planner.TierCore, true)
	p.Timeout = 30 * time.Millisecond
	p.generate = func(context.Context, string, planner.PlanContext) (*planner.Plan, error) {
		time.Sleep(500 * time.Millisecond)
		plan := planner.NewPlan("slow", "late")
		plan.AddTask("a", "too late")
		return plan, nil
	}
	f, reg := newTestFactory(t, nil, providerFor(p))

	start := time.Now()
	_, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "objective"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeTimeout, ""))
	assert.Less(t, time.Since(start), 300*time.Millisecond)

	snap, ok := reg.SnapshotOf("slow")
	require.True(t, ok)
	assert.Equal(t, int64(1), snap.Failures)
}

func TestFactory_InvalidPlanCountsAsFailure(t *testing.T) {
	p := newFake("empty", planner.TierCore, true)
	p.generate = func(_ context.Context, objective string, _ planner.PlanContext) (*planner.Plan, error) {
		return planner.NewPlan("empty", objective), nil
	}
	f, reg := newTestFactory(t, nil, providerFor(p))

	_, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "objective"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeValidation, ""))

	snap, _ := reg.SnapshotOf("empty")
	assert.Equal(t, int64(1), snap.Failures)
}

func TestFactory_NilPlanNilErrorRejected(t *testing.T) {
	p := newFake("void", planner.TierCore, true)
	p.generate = func(context.Context, string, planner.PlanContext) (*planner.Plan, error) {
		return nil, nil
	}
	f, _ := newTestFactory(t, nil, providerFor(p))

	_, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "objective"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeValidation, ""))
}

func TestFactory_GenerationErrorWrapped(t *testing.T) {
	cause := errors.New("upstream down")
	p := newFake("broken", planner.TierCore, true)
	p.generate = func(context.Context, string, planner.PlanContext) (*planner.Plan, error) {
		return nil, cause
	}
	f, _ := newTestFactory(t, nil, providerFor(p))

	_, err := f.GeneratePlan(context.Background(), SelectionRequest{Objective: "objective"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeGeneration, ""))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, int64(1), f.Stats().Failures)
}

func TestFactory_GenerateWithUnknownPlanner(t *testing.T) {
	f, _ := newTestFactory(t, nil, providerFor(newFake("alpha", planner.TierCore, true)))

	_, err := f.GenerateWith(context.Background(), "ghost", "objective", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeNotFound, ""))
}

func TestFactory_GenerateWithQuarantinedPlanner(t *testing.T) {
	quarantined := &failingTester{fakePlanner: *newFake("sick", planner.TierCore, true)}
	f, _ := newTestFactory(t, nil, providerFor(quarantined))

	_, err := f.GenerateWith(context.Background(), "sick", "objective", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, planner.NewError(planner.ErrorTypeAdmission, ""))
}

func TestFactory_GenerateWithBypassesRanking(t *testing.T) {
	f, _ := newTestFactory(t, nil,
		providerFor(newFake("core-prod", planner.TierCore, true)),
		providerFor(newFake("shadow", planner.TierShadow, true)),
	)

	plan, err := f.GenerateWith(context.Background(), "SHADOW", "objective", nil)
	require.NoError(t, err)
	assert.Equal(t, "shadow", plan.Planner)
}

func TestFactory_ReloadClearsCache(t *testing.T) {
	f, _ := newTestFactory(t, nil, providerFor(newFake("alpha", planner.TierCore, true)))
	ctx := context.Background()

	_, _, err := f.Select(ctx, SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	require.Equal(t, 1, f.Stats().CacheSize)

	f.Reload(ctx)
	assert.Equal(t, 0, f.Stats().CacheSize)

	_, _, err = f.Select(ctx, SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Stats().CacheSize)
}

func TestFactory_FailureLowersSubsequentRanking(t *testing.T) {
	good := newFake("good", planner.TierCore, true)
	bad := newFake("bad", planner.TierCore, true)
	bad.generate = func(context.Context, string, planner.PlanContext) (*planner.Plan, error) {
		return nil, errors.New("boom")
	}
	f, _ := newTestFactory(t, nil, providerFor(good), providerFor(bad))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = f.GenerateWith(ctx, "bad", "objective", nil)
		_, err := f.GenerateWith(ctx, "good", "objective", nil)
		require.NoError(t, err)
	}

	p, _, err := f.Select(ctx, SelectionRequest{Objective: "objective"})
	require.NoError(t, err)
	assert.Equal(t, "good", p.Name())
}
