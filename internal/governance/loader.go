package governance

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/helix-ai/helix/internal/types"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. HELIX_ENVIRONMENT, HELIX_DECAY_HALF_LIFE.
const envPrefix = "HELIX"

// Loader loads governance policy from files with environment overrides.
type Loader interface {
	Load(path string) (*Policy, error)
	LoadWithDefaults(path string) (*Policy, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct{}

// NewLoader creates a new policy Loader instance.
func NewLoader() Loader {
	return &viperLoader{}
}

// Load loads the policy from the specified YAML file path.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperLoader) Load(path string) (*Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.POLICY_LOAD_FAILED, "failed to read policy file", err)
	}

	var policy Policy
	if err := v.Unmarshal(&policy); err != nil {
		return nil, types.WrapError(types.POLICY_PARSE_FAILED, "failed to unmarshal policy", err)
	}

	interpolatePolicy(&policy)

	if err := policy.Validate(); err != nil {
		return nil, types.WrapError(types.POLICY_VALIDATION_FAILED, "policy validation failed", err)
	}

	return &policy, nil
}

// LoadWithDefaults loads the policy from the specified file path.
// If the file doesn't exist, the default policy is returned.
func (l *viperLoader) LoadWithDefaults(path string) (*Policy, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		policy := DefaultPolicy()
		if err := policy.Validate(); err != nil {
			return nil, types.WrapError(types.POLICY_VALIDATION_FAILED, "default policy validation failed", err)
		}
		return policy, nil
	}

	return l.Load(path)
}

// setDefaults seeds viper with the default policy so partial files work.
func setDefaults(v *viper.Viper) {
	def := DefaultPolicy()
	v.SetDefault("environment", def.Environment)
	v.SetDefault("decay_half_life", def.DecayHalfLife)
	v.SetDefault("min_reliability", def.MinReliability)
	v.SetDefault("default_timeout", def.DefaultTimeout)
	v.SetDefault("self_test_timeout", def.SelfTestTimeout)
	v.SetDefault("disable_quarantine", def.DisableQuarantine)
	v.SetDefault("structural.enabled", def.Structural.Enabled)
	v.SetDefault("structural.base_score", def.Structural.BaseScore)
	v.SetDefault("structural.grade_bonuses", def.Structural.GradeBonuses)
	v.SetDefault("structural.reliability_nudge", def.Structural.ReliabilityNudge)
	v.SetDefault("drift.max_task_count_ratio", def.Drift.MaxTaskCountRatio)
	v.SetDefault("drift.max_grade_drop", def.Drift.MaxGradeDrop)
}

// interpolatePolicy applies ${VAR_NAME} environment interpolation to the
// string-valued policy fields.
func interpolatePolicy(p *Policy) {
	p.Environment = interpolateString(p.Environment)
	for i, name := range p.AllowList {
		p.AllowList[i] = interpolateString(name)
	}
	for i, name := range p.BlockList {
		p.BlockList[i] = interpolateString(name)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as-is.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
