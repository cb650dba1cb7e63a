// Package config provides configuration management for the elemental engine.
// It loads settings from environment variables with the ELEMENTAL_ prefix
// and provides sensible defaults for all options. Tuning constants and
// lexicon extensions additionally load from an optional YAML file, which can
// be hot-reloaded at runtime (see Watcher).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiralogic/elemental/internal/classifier"
	"github.com/spiralogic/elemental/internal/engine"
	"github.com/spiralogic/elemental/internal/session"
)

// Config holds all configuration for an engine host.
type Config struct {
	// TuningFile is the optional path to the YAML tuning file.
	TuningFile string

	// Engine holds the balancing tuning constants.
	Engine engine.Config

	// Session configures the in-memory session store.
	Session session.Options

	// Analytics configures decision sinks.
	Analytics AnalyticsConfig

	// Lexicon is the extension merged over the built-in lexicon.
	Lexicon classifier.Lexicon
}

// AnalyticsConfig contains decision sink configuration.
type AnalyticsConfig struct {
	// SQLitePath enables the SQLite decision log when non-empty.
	// Env var: ELEMENTAL_SQLITE_PATH
	SQLitePath string

	// PostgresDSN enables the Postgres decision log when non-empty.
	// Env var: ELEMENTAL_POSTGRES_DSN
	PostgresDSN string

	// LogDecisions enables the one-line-per-decision process log sink.
	// Env var: ELEMENTAL_LOG_DECISIONS (default: false)
	LogDecisions bool
}

// Load builds configuration from environment variables, then applies the
// tuning file when one is configured.
func Load() (*Config, error) {
	cfg := &Config{
		TuningFile: os.Getenv("ELEMENTAL_TUNING_FILE"),
		Engine:     engine.DefaultConfig(),
		Session: session.Options{
			MaxSessions: getEnvInt("ELEMENTAL_MAX_SESSIONS", 1024),
			TTL:         getEnvDuration("ELEMENTAL_SESSION_TTL", 30*time.Minute),
		},
		Analytics: AnalyticsConfig{
			SQLitePath:   os.Getenv("ELEMENTAL_SQLITE_PATH"),
			PostgresDSN:  os.Getenv("ELEMENTAL_POSTGRES_DSN"),
			LogDecisions: getEnvBool("ELEMENTAL_LOG_DECISIONS", false),
		},
	}

	if cfg.TuningFile != "" {
		tuning, err := LoadTuningFile(cfg.TuningFile)
		if err != nil {
			return nil, err
		}
		cfg.Engine = tuning.Engine.Apply(cfg.Engine)
		cfg.Lexicon = tuning.Lexicon
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid engine tuning: %w", err)
	}

	// The session store owns history capacity; keep it aligned with the
	// engine's configured history size.
	cfg.Session.HistorySize = cfg.Engine.HistorySize

	return cfg, nil
}

// TuningFile is the YAML tuning document: optional engine overrides plus a
// lexicon extension merged over the built-in vocabulary.
type TuningFile struct {
	Engine  EngineTuning       `yaml:"engine"`
	Lexicon classifier.Lexicon `yaml:"lexicon"`
}

// EngineTuning mirrors engine.Config with optional fields, so a tuning file
// can override a single constant without restating the rest.
type EngineTuning struct {
	DecayFactor      *float64 `yaml:"decay_factor"`
	IntensityCeiling *float64 `yaml:"intensity_ceiling"`
	IntensityEpsilon *float64 `yaml:"intensity_epsilon"`
	DominanceMargin  *float64 `yaml:"dominance_margin"`
	DominanceFloor   *float64 `yaml:"dominance_floor"`
	SomaticThreshold *float64 `yaml:"somatic_threshold"`
	AgencyEpsilon    *float64 `yaml:"agency_epsilon"`
	LoopWindow       *int     `yaml:"loop_window"`
	HistorySize      *int     `yaml:"history_size"`
}

// Apply overlays the set fields onto base and returns the result.
func (t EngineTuning) Apply(base engine.Config) engine.Config {
	if t.DecayFactor != nil {
		base.DecayFactor = *t.DecayFactor
	}
	if t.IntensityCeiling != nil {
		base.IntensityCeiling = *t.IntensityCeiling
	}
	if t.IntensityEpsilon != nil {
		base.IntensityEpsilon = *t.IntensityEpsilon
	}
	if t.DominanceMargin != nil {
		base.DominanceMargin = *t.DominanceMargin
	}
	if t.DominanceFloor != nil {
		base.DominanceFloor = *t.DominanceFloor
	}
	if t.SomaticThreshold != nil {
		base.SomaticThreshold = *t.SomaticThreshold
	}
	if t.AgencyEpsilon != nil {
		base.AgencyEpsilon = *t.AgencyEpsilon
	}
	if t.LoopWindow != nil {
		base.LoopWindow = *t.LoopWindow
	}
	if t.HistorySize != nil {
		base.HistorySize = *t.HistorySize
	}
	return base
}

// LoadTuningFile parses the YAML tuning document at path.
func LoadTuningFile(path string) (*TuningFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read tuning file %q: %w", path, err)
	}

	var tuning TuningFile
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return nil, fmt.Errorf("config: failed to parse tuning file %q: %w", path, err)
	}
	return &tuning, nil
}

// getEnvInt reads an integer environment variable with a default.
func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvBool reads a boolean environment variable with a default.
func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvDuration reads a duration environment variable with a default.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
