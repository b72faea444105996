package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fractionworks/proceval/internal/config"
)

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proceval.yaml")

	out, err := runCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentSchemaVersion, cfg.Version)

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		_, err := runCommand(t, "config", "init", path)
		require.Error(t, err)
	})

	t.Run("overwrites with force", func(t *testing.T) {
		_, err := runCommand(t, "config", "init", path, "--force")
		require.NoError(t, err)
	})
}

func TestConfigValidateCommand(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "proceval.yaml")
		_, err := runCommand(t, "config", "init", path)
		require.NoError(t, err)

		out, err := runCommand(t, "config", "validate", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("missing --config flag", func(t *testing.T) {
		_, err := runCommand(t, "config", "validate")
		require.Error(t, err)
	})

	t.Run("incompatible schema version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "proceval.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`version: "9.0.0"`), 0o600))

		_, err := runCommand(t, "config", "validate", "--config", path)
		require.Error(t, err)
	})
}
