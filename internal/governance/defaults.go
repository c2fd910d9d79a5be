package governance

import "time"

// DefaultPolicy returns the governance policy used when no configuration
// file is present. Defaults are conservative: quarantine enabled, short
// self-test timeout, and a neutral reliability floor.
func DefaultPolicy() *Policy {
	return &Policy{
		Environment:       "production",
		AllowList:         nil,
		BlockList:         nil,
		DecayHalfLife:     1 * time.Hour,
		MinReliability:    0.25,
		DefaultTimeout:    30 * time.Second,
		SelfTestTimeout:   5 * time.Second,
		DisableQuarantine: false,
		Structural: StructuralPolicy{
			Enabled:   true,
			BaseScore: 0.05,
			GradeBonuses: map[string]float64{
				"A": 0.10,
				"B": 0.05,
				"C": 0.0,
			},
			ReliabilityNudge: 0.05,
		},
		Drift: DriftPolicy{
			MaxTaskCountRatio: 0.5,
			MaxGradeDrop:      1,
		},
	}
}
