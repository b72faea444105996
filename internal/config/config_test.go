package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proceval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, CurrentSchemaVersion, cfg.Version)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.NotEmpty(t, cfg.Cache.Directory)
	assert.Greater(t, cfg.Engine.Factors.ElectricityGWP, 0.0)
	assert.Greater(t, cfg.Engine.MonteCarlo.Iterations, 0)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
version: "1.0.0"
logging:
  level: debug
cache:
  enabled: true
  ttl: 30m
engine:
  benchmarks:
    recovery_rate: 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.InDelta(t, 80, cfg.Engine.Benchmarks.RecoveryRate, 1e-9)

	// Untouched values keep their defaults.
	defaults := Default()
	assert.Equal(t, defaults.Logging.Format, cfg.Logging.Format)
	assert.InDelta(t, defaults.Engine.Factors.ElectricityGWP, cfg.Engine.Factors.ElectricityGWP, 1e-12)
	assert.InDelta(t, defaults.Engine.Benchmarks.MassEfficiency, cfg.Engine.Benchmarks.MassEfficiency, 1e-9)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "version: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
}

func TestSchemaVersionCheck(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{name: "current version", version: "1.0.0", wantErr: false},
		{name: "newer minor is compatible", version: "1.3.0", wantErr: false},
		{name: "major bump is incompatible", version: "2.0.0", wantErr: true},
		{name: "older major is incompatible", version: "0.9.0", wantErr: true},
		{name: "unparsable version", version: "not-a-version", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := checkSchemaVersion(tc.version)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrIncompatibleSchema)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadRejectsIncompatibleSchema(t *testing.T) {
	path := writeConfigFile(t, `version: "2.0.0"`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestLoadRejectsUnrunnableEngineSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name: "zero sensitivity step",
			content: `
version: "1.0.0"
engine:
  sensitivity:
    step_pct: 0
`,
			wantMsg: "step_pct",
		},
		{
			name: "negative sensitivity step",
			content: `
version: "1.0.0"
engine:
  sensitivity:
    step_pct: -5
`,
			wantMsg: "step_pct",
		},
		{
			name: "negative sensitivity range",
			content: `
version: "1.0.0"
engine:
  sensitivity:
    range_pct: -20
`,
			wantMsg: "range_pct",
		},
		{
			name: "negative monte carlo iterations",
			content: `
version: "1.0.0"
engine:
  monte_carlo:
    iterations: -1
`,
			wantMsg: "iterations",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
