package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 80.0, cfg.CoverageMin)
	assert.Equal(t, 80.0, cfg.MutationMin)
	assert.True(t, cfg.StrictZeroSurvivors)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "cr_session.sqlite", cfg.SessionDB)
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
	assert.NotEmpty(t, cfg.CoverageCommand)
}

func TestLoad_NoProjectFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.CoverageMin)
	assert.Equal(t, dir, cfg.WorkDir)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `coverage_min: 70
mutation_min: 90
engine: mutmut
strict_zero_survivors: false
log_dir: out
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mutagate.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 70.0, cfg.CoverageMin)
	assert.Equal(t, 90.0, cfg.MutationMin)
	assert.Equal(t, "mutmut", cfg.Engine)
	assert.False(t, cfg.StrictZeroSurvivors)
	assert.Equal(t, "out", cfg.LogDir)
}

func TestLoad_ProjectFileTimeoutAndCommand(t *testing.T) {
	dir := t.TempDir()
	content := `timeout: 10m
coverage_command:
  - pytest
  - --cov=app
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mutagate.yaml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, []string{"pytest", "--cov=app"}, cfg.CoverageCommand)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 80.0, cfg.CoverageMin)
	assert.True(t, cfg.StrictZeroSurvivors)
}

func TestLoad_ProjectFileBadTimeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mutagate.yaml"), []byte("timeout: soon\n"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_BadProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mutagate.yaml"), []byte("{not yaml: ["), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MUTAGATE_COVERAGE_MIN", "65.5")
	t.Setenv("MUTAGATE_MUTATION_MIN", "95")
	t.Setenv("MUTAGATE_ENGINE", "cosmic-ray")
	t.Setenv("MUTAGATE_STRICT_ZERO_SURVIVORS", "false")
	t.Setenv("MUTAGATE_TIMEOUT", "5m")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 65.5, cfg.CoverageMin)
	assert.Equal(t, 95.0, cfg.MutationMin)
	assert.Equal(t, "cosmic-ray", cfg.Engine)
	assert.False(t, cfg.StrictZeroSurvivors)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
}

func TestLoad_UnparsableEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("MUTAGATE_COVERAGE_MIN", "not-a-number")
	t.Setenv("MUTAGATE_MUTATION_MIN", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.CoverageMin)
	assert.Equal(t, 80.0, cfg.MutationMin)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"coverage min too high", func(c *Config) { c.CoverageMin = 101 }, true},
		{"coverage min negative", func(c *Config) { c.CoverageMin = -1 }, true},
		{"mutation min too high", func(c *Config) { c.MutationMin = 100.5 }, true},
		{"empty coverage command", func(c *Config) { c.CoverageCommand = nil }, true},
		{"zero thresholds valid", func(c *Config) { c.CoverageMin = 0; c.MutationMin = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.LogDir = "out"

	assert.Equal(t, filepath.Join("out", "mutation_output.log"), cfg.RawLogPath())
	assert.Equal(t, filepath.Join("out", "mutants_survived.json"), cfg.SurvivorsPath())
}
