// Package config loads and validates run configuration. Every tunable the
// simulation consumes is named here and handed to the packages as explicit
// parameter structs; nothing reads configuration globally.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
	"github.com/aventine/socius/internal/contagion"
	"github.com/aventine/socius/internal/decision"
	"github.com/aventine/socius/internal/expression"
	"github.com/aventine/socius/internal/perception"
	"github.com/aventine/socius/internal/social"
)

// Config is the full run configuration.
type Config struct {
	Seed         int64         `mapstructure:"seed"`
	Agents       int           `mapstructure:"agents"`
	WorldExtent  float64       `mapstructure:"world_extent"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Parallelism  int           `mapstructure:"parallelism"`

	HTTPPort      int    `mapstructure:"http_port"`
	AdminKey      string `mapstructure:"admin_key"`
	RateLimit     int    `mapstructure:"rate_limit"`
	LogLevel      string `mapstructure:"log_level"`
	DatabasePath  string `mapstructure:"database_path"`
	SnapshotHours int    `mapstructure:"snapshot_hours"`

	HungerDecayRate  float64 `mapstructure:"hunger_decay_rate"`
	EnergyDecayRate  float64 `mapstructure:"energy_decay_rate"`
	IsolationRate    float64 `mapstructure:"isolation_rate"`
	ThreatRate       float64 `mapstructure:"threat_rate"`
	SafetyRelaxRate  float64 `mapstructure:"safety_relax_rate"`
	EmotionDriftRate float64 `mapstructure:"emotion_drift_rate"`

	StressEnterThreshold   float64 `mapstructure:"stress_enter_threshold"`
	StressExitThreshold    float64 `mapstructure:"stress_exit_threshold"`
	StressThresholdImpulse float64 `mapstructure:"stress_threshold_impulse"`
	TraumaThreshold        float64 `mapstructure:"trauma_threshold"`

	ExpressionNoise float64 `mapstructure:"expression_noise"`

	PerceptionRadius      float64 `mapstructure:"perception_radius"`
	ThreatSalienceDefault float64 `mapstructure:"threat_salience_default"`
	FamiliarityPull       float64 `mapstructure:"familiarity_pull"`
	PerceptionNoise       float64 `mapstructure:"perception_noise"`
	AttentionSlotsMin     int     `mapstructure:"attention_slots_min"`
	AttentionSlotsMax     int     `mapstructure:"attention_slots_max"`

	MemoryHalfLifeDays float64 `mapstructure:"memory_half_life_days"`

	ContagionRadius float64 `mapstructure:"contagion_radius"`
	ContagionFactor float64 `mapstructure:"contagion_factor"`
	NegativeBias    float64 `mapstructure:"negative_bias"`

	ReputationDailyDecay float64 `mapstructure:"reputation_daily_decay"`

	ConflictEpsilon float64 `mapstructure:"conflict_epsilon"`
	FearOverride    float64 `mapstructure:"fear_override"`
	AngerOverride   float64 `mapstructure:"anger_override"`

	LODFocusRadius float64 `mapstructure:"lod_focus_radius"`
	LODFarRate     float64 `mapstructure:"lod_far_rate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 42)
	v.SetDefault("agents", 64)
	v.SetDefault("world_extent", 96.0)
	v.SetDefault("tick_interval", "250ms")
	v.SetDefault("parallelism", 4)

	v.SetDefault("http_port", 8080)
	v.SetDefault("admin_key", "")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_path", "socius.db")
	v.SetDefault("snapshot_hours", 6)

	v.SetDefault("hunger_decay_rate", 0.04)
	v.SetDefault("energy_decay_rate", 0.03)
	v.SetDefault("isolation_rate", 0.02)
	v.SetDefault("threat_rate", 0.3)
	v.SetDefault("safety_relax_rate", 0.1)
	v.SetDefault("emotion_drift_rate", 0.08)

	v.SetDefault("stress_enter_threshold", 0.7)
	v.SetDefault("stress_exit_threshold", 0.5)
	v.SetDefault("stress_threshold_impulse", 0.7)
	v.SetDefault("trauma_threshold", 0.85)

	v.SetDefault("expression_noise", 0.1)

	v.SetDefault("perception_radius", 10.0)
	v.SetDefault("threat_salience_default", 1.3)
	v.SetDefault("familiarity_pull", 0.2)
	v.SetDefault("perception_noise", 0.3)
	v.SetDefault("attention_slots_min", 3)
	v.SetDefault("attention_slots_max", 7)

	v.SetDefault("memory_half_life_days", 7.0)

	v.SetDefault("contagion_radius", 8.0)
	v.SetDefault("contagion_factor", 0.1)
	v.SetDefault("negative_bias", 1.5)

	v.SetDefault("reputation_daily_decay", 0.02)

	v.SetDefault("conflict_epsilon", 0.02)
	v.SetDefault("fear_override", 0.8)
	v.SetDefault("anger_override", 0.8)

	v.SetDefault("lod_focus_radius", 48.0)
	v.SetDefault("lod_far_rate", 0.25)
}

// Load reads configuration from the given file (optional), the environment
// (SOCIUS_ prefix), and defaults, in rising priority of env over file over
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SOCIUS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the simulation cannot run with. Called at
// startup; a bad config is fatal, never silently patched.
func (c *Config) Validate() error {
	switch {
	case c.Agents <= 0:
		return fmt.Errorf("agents must be positive, got %d", c.Agents)
	case c.WorldExtent <= 0:
		return fmt.Errorf("world_extent must be positive, got %g", c.WorldExtent)
	case c.TickInterval <= 0:
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	case c.Parallelism <= 0:
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	case c.StressExitThreshold >= c.StressEnterThreshold:
		return fmt.Errorf("stress_exit_threshold (%g) must be below stress_enter_threshold (%g)",
			c.StressExitThreshold, c.StressEnterThreshold)
	case c.AttentionSlotsMin < 1 || c.AttentionSlotsMax < c.AttentionSlotsMin:
		return fmt.Errorf("attention slots invalid: min %d max %d", c.AttentionSlotsMin, c.AttentionSlotsMax)
	case c.MemoryHalfLifeDays <= 0:
		return fmt.Errorf("memory_half_life_days must be positive, got %g", c.MemoryHalfLifeDays)
	case c.ContagionFactor < 0 || c.ContagionRadius <= 0:
		return fmt.Errorf("contagion parameters invalid: factor %g radius %g", c.ContagionFactor, c.ContagionRadius)
	case c.NegativeBias < 1:
		return fmt.Errorf("negative_bias must be >= 1, got %g", c.NegativeBias)
	case c.FearOverride <= 0 || c.FearOverride > 1:
		return fmt.Errorf("fear_override must be in (0, 1], got %g", c.FearOverride)
	case c.AngerOverride <= 0 || c.AngerOverride > 1:
		return fmt.Errorf("anger_override must be in (0, 1], got %g", c.AngerOverride)
	case c.LODFarRate <= 0 || c.LODFarRate > 1:
		return fmt.Errorf("lod_far_rate must be in (0, 1], got %g", c.LODFarRate)
	case c.RateLimit <= 0:
		return fmt.Errorf("rate_limit must be positive, got %d", c.RateLimit)
	}
	return nil
}

// NeedsParams assembles the needs-decay constants.
func (c *Config) NeedsParams() agent.NeedsDecayParams {
	return agent.NeedsDecayParams{
		HungerRate:    c.HungerDecayRate,
		EnergyRate:    c.EnergyDecayRate,
		IsolationRate: c.IsolationRate,
		ThreatRate:    c.ThreatRate,
		SafetyRelax:   c.SafetyRelaxRate,
	}
}

// StressParams assembles the stress-system constants.
func (c *Config) StressParams() agent.StressParams {
	return agent.StressParams{
		EnterThreshold: c.StressEnterThreshold,
		ExitThreshold:  c.StressExitThreshold,
		AcuteDecay:     0.15,
		ChronicGain:    0.02,
		ChronicDecay:   0.01,
	}
}

// StimulusParams assembles the environment-response constants.
func (c *Config) StimulusParams() agent.StimulusParams {
	return agent.StimulusParams{
		ThreatSafetyGain: 0.5,
		ThreatStressGain: 0.6,
		TraumaThreshold:  c.TraumaThreshold,
		Stress:           c.StressParams(),
	}
}

// ExpressionParams assembles the expression constants.
func (c *Config) ExpressionParams() expression.Params {
	return expression.Params{Noise: c.ExpressionNoise}
}

// PerceptionParams assembles the perception constants.
func (c *Config) PerceptionParams() perception.Params {
	return perception.Params{
		MinSlots:        c.AttentionSlotsMin,
		MaxSlots:        c.AttentionSlotsMax,
		ThreatSalience:  c.ThreatSalienceDefault,
		FamiliarityPull: c.FamiliarityPull,
		NoiseScale:      c.PerceptionNoise,
	}
}

// BeliefParams assembles the belief-formation constants.
func (c *Config) BeliefParams() belief.Params {
	p := belief.DefaultParams()
	p.HalfLifeDays = c.MemoryHalfLifeDays
	return p
}

// ContagionParams assembles the contagion constants.
func (c *Config) ContagionParams() contagion.Params {
	return contagion.Params{
		Radius:       c.ContagionRadius,
		Factor:       c.ContagionFactor,
		NegativeBias: c.NegativeBias,
		MinDistance:  0.25,
	}
}

// SocialParams assembles the reputation constants.
func (c *Config) SocialParams() social.Params {
	p := social.DefaultParams()
	p.DailyDecay = c.ReputationDailyDecay
	return p
}

// DecisionParams assembles the arbitration constants.
func (c *Config) DecisionParams() decision.Params {
	p := decision.DefaultParams()
	p.ImpulseThreshold = c.StressThresholdImpulse
	p.ConflictEpsilon = c.ConflictEpsilon
	p.FearOverride = c.FearOverride
	p.AngerOverride = c.AngerOverride
	return p
}
