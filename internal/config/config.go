// Package config loads the proceval configuration file: engine domain
// constants (emission factors, benchmarks, sweep and simulation
// defaults), the result cache settings, and logging. Values not present
// in the file keep their documented defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/fractionworks/proceval/internal/engine"
	"github.com/fractionworks/proceval/internal/logging"
)

// CurrentSchemaVersion is the config schema version this build writes.
const CurrentSchemaVersion = "1.0.0"

// schemaConstraint is the range of config schema versions this build can
// read. Minor additions stay compatible; a major bump is a breaking
// schema change.
const schemaConstraint = "^1.0"

// ErrIncompatibleSchema indicates a config file written for a different
// major schema version.
var ErrIncompatibleSchema = errors.New("incompatible config schema version")

// CacheConfig controls the analysis result cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"   json:"enabled"`
	Directory string        `yaml:"directory" json:"directory"`
	TTL       time.Duration `yaml:"ttl"       json:"ttl"`
}

// Config is the full proceval configuration.
type Config struct {
	Version string         `yaml:"version" json:"version"`
	Logging logging.Config `yaml:"logging" json:"logging"`
	Engine  engine.Config  `yaml:"engine"  json:"engine"`
	Cache   CacheConfig    `yaml:"cache"   json:"cache"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Version: CurrentSchemaVersion,
		Logging: logging.DefaultConfig(),
		Engine:  engine.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:   false,
			Directory: defaultCacheDir(),
			TTL:       time.Hour,
		},
	}
}

// Load reads a YAML config file over the defaults, so a partial file only
// overrides what it names. The schema version of the file is checked
// against the supported range.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	if err := checkSchemaVersion(cfg.Version); err != nil {
		return Config{}, err
	}
	if err := checkEngine(cfg.Engine); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// checkEngine rejects engine settings that cannot drive a run: the
// sensitivity sweep must have a positive range and step or its point
// grid is empty or unbounded.
func checkEngine(eng engine.Config) error {
	if eng.Sensitivity.StepPct <= 0 {
		return fmt.Errorf("engine.sensitivity.step_pct must be positive, got %v", eng.Sensitivity.StepPct)
	}
	if eng.Sensitivity.RangePct <= 0 {
		return fmt.Errorf("engine.sensitivity.range_pct must be positive, got %v", eng.Sensitivity.RangePct)
	}
	if eng.MonteCarlo.Iterations < 0 {
		return fmt.Errorf("engine.monte_carlo.iterations cannot be negative, got %d", eng.MonteCarlo.Iterations)
	}
	return nil
}

// checkSchemaVersion verifies the declared schema version is one this
// build can read.
func checkSchemaVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: cannot parse version %q: %v", ErrIncompatibleSchema, version, err)
	}

	constraint, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return fmt.Errorf("parse schema constraint: %w", err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("%w: file declares %s, this build reads %s",
			ErrIncompatibleSchema, version, schemaConstraint)
	}
	return nil
}

// defaultCacheDir places the result cache under the user cache dir,
// falling back to a temp path when the platform reports none.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir() + "/proceval-cache"
	}
	return base + "/proceval"
}
