// Package factory implements planner discovery, ranked selection,
// instantiation caching, self-heal, and the instrumentation wrapped around
// every generation call: timeouts, reliability accounting, structural
// scoring, and drift metadata.
package factory

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/helix-ai/helix/internal/governance"
	"github.com/helix-ai/helix/internal/observability"
	"github.com/helix-ai/helix/internal/planner"
	"github.com/helix-ai/helix/internal/registry"
	"github.com/helix-ai/helix/internal/scoring"
)

// discoveryConcurrency bounds how many providers are built and registered
// in parallel during discovery.
const discoveryConcurrency = 4

// Provider couples a planner constructor with the module or tag it came
// from. The factory's bootstrap iterates providers and registers each
// result explicitly; a failing provider is logged and skipped, never fatal.
type Provider struct {
	Origin string
	Build  planner.Provider
}

// Stats aggregates factory activity counters.
type Stats struct {
	Discoveries int64 `json:"discoveries" yaml:"discoveries"`
	Selections  int64 `json:"selections" yaml:"selections"`
	Generations int64 `json:"generations" yaml:"generations"`
	Failures    int64 `json:"failures" yaml:"failures"`
	SelfHeals   int64 `json:"self_heals" yaml:"self_heals"`
	CacheSize   int   `json:"cache_size" yaml:"cache_size"`
}

// Factory is the front door of the selection engine. It owns discovery and
// the instance cache; registry and reliability state live in the injected
// Registry. One mutex guards factory-local mutation; selection itself reads
// a point-in-time registry snapshot without holding it.
type Factory struct {
	mu         sync.Mutex
	registry   *registry.Registry
	policy     *governance.Policy
	log        *observability.TracedLogger
	tracer     trace.Tracer
	selector   *Selector
	structural *scoring.StructuralScorer
	drift      *scoring.DriftDetector
	providers  []Provider
	cache      map[string]planner.Planner
	discovered bool
	stats      Stats
}

// Option configures a Factory.
type Option func(*Factory)

// WithTracer sets the OpenTelemetry tracer used to instrument generation
// calls. Defaults to a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Factory) {
		f.tracer = tracer
	}
}

// New creates a factory over the injected registry and policy. Providers
// are registered lazily on first selection or eagerly via Discover.
func New(reg *registry.Registry, policy *governance.Policy, log *observability.TracedLogger, providers []Provider, opts ...Option) *Factory {
	if log == nil {
		log = observability.NopLogger()
	}
	f := &Factory{
		registry:   reg,
		policy:     policy,
		log:        log.Named("factory"),
		tracer:     noop.NewTracerProvider().Tracer("helix/factory"),
		selector:   NewSelector(policy),
		structural: scoring.NewStructuralScorer(policy.Structural),
		drift:      scoring.NewDriftDetector(policy.Drift),
		providers:  providers,
		cache:      make(map[string]planner.Planner),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Discover builds every configured provider and registers the results.
// Provider failures are logged and skipped. Discover is idempotent; use
// SelfHeal or Reload to force a re-run.
func (f *Factory) Discover(ctx context.Context) {
	f.mu.Lock()
	if f.discovered {
		f.mu.Unlock()
		return
	}
	f.discovered = true
	f.stats.Discoveries++
	providers := f.providers
	f.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoveryConcurrency)

	for _, prov := range providers {
		prov := prov
		g.Go(func() error {
			p, err := prov.Build()
			if err != nil {
				f.log.Warn(gctx, "planner provider failed, skipping",
					"origin", prov.Origin, "error", err.Error())
				return nil
			}
			f.registry.Register(gctx, p, prov.Origin)
			return nil
		})
	}

	// Providers never return errors upward, so Wait only joins the group.
	_ = g.Wait()

	f.log.Info(ctx, "planner discovery settled",
		"providers", len(providers), "registered", f.registry.Len())
}

// SelfHeal forces a re-discovery pass. Already-registered planners are
// skipped by the registry; the pass re-admits providers that failed to
// build earlier.
func (f *Factory) SelfHeal(ctx context.Context) {
	f.mu.Lock()
	f.discovered = false
	f.stats.SelfHeals++
	f.mu.Unlock()

	f.log.Warn(ctx, "self-heal triggered: re-running planner discovery")
	f.Discover(ctx)
}

// Reload clears the instance cache and forces re-discovery. This is the
// only path that evicts cached planner instances.
func (f *Factory) Reload(ctx context.Context) {
	f.mu.Lock()
	f.cache = make(map[string]planner.Planner)
	f.discovered = false
	f.mu.Unlock()

	f.Discover(ctx)
}

// Select ranks all eligible planners for the request and returns the top
// candidate. An empty pool triggers one self-heal re-discovery before the
// call fails with the distinguished no-active-planners error.
func (f *Factory) Select(ctx context.Context, req SelectionRequest) (planner.Planner, ScoredCandidate, error) {
	f.Discover(ctx)

	pool := f.registry.Eligible()
	if len(pool) == 0 {
		f.SelfHeal(ctx)
		pool = f.registry.Eligible()
	}
	if len(pool) == 0 {
		return nil, ScoredCandidate{}, planner.NewNoActivePlannersError()
	}

	best, ok := f.selector.Pick(pool, req)
	if !ok {
		return nil, ScoredCandidate{}, planner.NewNoActivePlannersError()
	}

	f.mu.Lock()
	f.stats.Selections++
	instance, cached := f.cache[best.Name]
	if !cached {
		instance = best.Planner
		f.cache[best.Name] = instance
	}
	f.mu.Unlock()

	f.log.Debug(ctx, "planner selected",
		"name", best.Name, "score", best.Score, "pool", len(pool))
	return instance, best, nil
}

// GeneratePlan selects the best planner for the request and runs an
// instrumented generation call. Callers receive either a validated plan or
// one of the typed planner errors.
func (f *Factory) GeneratePlan(ctx context.Context, req SelectionRequest, pctx planner.PlanContext) (*planner.Plan, error) {
	p, best, err := f.Select(ctx, req)
	if err != nil {
		return nil, err
	}
	return f.generate(ctx, p, best.Name, best.Score, req.Objective, pctx)
}

// GenerateWith runs an instrumented generation call against an explicitly
// named planner. Quarantined planners yield an admission error.
func (f *Factory) GenerateWith(ctx context.Context, name, objective string, pctx planner.PlanContext) (*planner.Plan, error) {
	f.Discover(ctx)

	p, rec, err := f.registry.Get(name)
	if err != nil {
		return nil, err
	}

	rel, _ := f.registry.ReliabilityOf(rec.Name)
	score := CompositeScore(registry.Candidate{
		Name:            rec.Name,
		Tier:            rec.Tier,
		Capabilities:    rec.Capabilities,
		ProductionReady: rec.ProductionReady,
		Reliability:     rel,
	}, SelectionRequest{Objective: objective})

	return f.generate(ctx, p, rec.Name, score, objective, pctx)
}

type generateResult struct {
	plan *planner.Plan
	err  error
}

// generate wraps a single generation call: otel span, per-call timeout,
// reliability accounting, plan validation, and metadata enrichment.
func (f *Factory) generate(ctx context.Context, p planner.Planner, name string, selectionScore float64, objective string, pctx planner.PlanContext) (*planner.Plan, error) {
	timeout := p.DefaultTimeout()
	if timeout <= 0 {
		timeout = f.policy.DefaultTimeout
	}

	ctx, span := f.tracer.Start(ctx, "factory.generate",
		trace.WithAttributes(
			attribute.String("planner.name", name),
			attribute.Int("objective.length", len(objective)),
		))
	defer span.End()

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan generateResult, 1)
	go func() {
		plan, err := p.Generate(genCtx, objective, pctx)
		ch <- generateResult{plan: plan, err: err}
	}()

	var plan *planner.Plan
	var genErr error
	select {
	case res := <-ch:
		plan, genErr = res.plan, res.err
	case <-genCtx.Done():
		genErr = genCtx.Err()
	}
	duration := time.Since(start)

	// Normalize timeouts into the typed timeout error; the abandoned
	// goroutine, if any, finishes in the background.
	if genErr != nil && errors.Is(genErr, context.DeadlineExceeded) {
		genErr = planner.NewTimeoutError(name, timeout)
	}

	// A structurally invalid plan counts as a failure: callers never see a
	// partially constructed plan.
	if genErr == nil {
		if plan == nil {
			genErr = planner.NewValidationError("planner returned no plan and no error")
		} else {
			genErr = plan.Validate()
		}
	}

	f.registry.RecordInvocation(ctx, name, duration, genErr)

	if genErr != nil {
		span.SetStatus(codes.Error, genErr.Error())
		f.mu.Lock()
		f.stats.Failures++
		f.mu.Unlock()

		f.log.Warn(ctx, "generation failed",
			"name", name, "duration_ms", duration.Milliseconds(), "error", genErr.Error())

		var typed *planner.Error
		if errors.As(genErr, &typed) {
			return nil, genErr
		}
		return nil, planner.NewGenerationError(name, genErr)
	}

	f.enrich(plan, name, selectionScore, duration)

	f.mu.Lock()
	f.stats.Generations++
	f.mu.Unlock()

	span.SetStatus(codes.Ok, "")
	f.log.Info(ctx, "plan generated",
		"name", name,
		"tasks", len(plan.Tasks),
		"duration_ms", duration.Milliseconds())
	return plan, nil
}

// enrich attaches the instrumentation metadata to a validated plan. Every
// field is write-once; values already set by the planner win.
func (f *Factory) enrich(plan *planner.Plan, name string, selectionScore float64, duration time.Duration) {
	rel, _ := f.registry.ReliabilityOf(name)

	plan.PutMetadata(planner.MetaDurationMS, duration.Milliseconds())
	plan.PutMetadata(planner.MetaNodeCount, len(plan.Tasks))
	plan.PutMetadata(planner.MetaReliability, rel)
	plan.PutMetadata(planner.MetaSelectionScore, selectionScore)

	final := selectionScore
	if bonus, graded := f.structural.Bonus(plan, rel); graded {
		plan.PutMetadata(planner.MetaStructuralBonus, bonus)
		final = f.structural.Final(selectionScore, bonus)
	}
	plan.PutMetadata(planner.MetaFinalScore, final)

	plan.PutMetadata(planner.MetaDriftDetected, f.drift.Observe(name, plan))
}

// Stats returns a copy of the factory counters.
func (f *Factory) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := f.stats
	stats.CacheSize = len(f.cache)
	return stats
}
