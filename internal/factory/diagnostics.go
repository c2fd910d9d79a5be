package factory

import (
	"context"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helix-ai/helix/internal/registry"
	"github.com/helix-ai/helix/internal/types"
)

// Report is the operator-facing diagnostics artifact: aggregate factory and
// registry statistics plus a per-planner snapshot.
type Report struct {
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
	Environment string              `json:"environment" yaml:"environment"`
	Health      types.HealthStatus  `json:"health" yaml:"health"`
	Factory     Stats               `json:"factory" yaml:"factory"`
	Registry    registry.Stats      `json:"registry" yaml:"registry"`
	Planners    []registry.Snapshot `json:"planners" yaml:"planners"`
}

// Health reports the aggregate health of the planner pool.
func (f *Factory) Health(ctx context.Context) types.HealthStatus {
	return f.registry.Health(ctx)
}

// Snapshots returns the per-planner diagnostics snapshots.
func (f *Factory) Snapshots() []registry.Snapshot {
	return f.registry.Snapshots()
}

// Report assembles the full diagnostics report.
func (f *Factory) Report(ctx context.Context) Report {
	return Report{
		GeneratedAt: time.Now(),
		Environment: f.policy.Environment,
		Health:      f.Health(ctx),
		Factory:     f.Stats(),
		Registry:    f.registry.Stats(),
		Planners:    f.registry.Snapshots(),
	}
}

// ExportReport writes the diagnostics report to a YAML file.
func (f *Factory) ExportReport(ctx context.Context, path string) error {
	report := f.Report(ctx)

	data, err := yaml.Marshal(report)
	if err != nil {
		return types.WrapError(types.REGISTRY_EXPORT_FAILED, "failed to marshal diagnostics report", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return types.WrapError(types.REGISTRY_EXPORT_FAILED, "failed to write diagnostics report", err)
	}

	f.log.Info(ctx, "diagnostics report exported", "path", path)
	return nil
}
