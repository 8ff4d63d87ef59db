// Package config loads gate configuration from defaults, a project file,
// environment variables, and CLI flag overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultMinScore is the default minimum for both gate thresholds.
const DefaultMinScore = 80.0

const envPrefix = "MUTAGATE"

// Config holds all gate configuration.
type Config struct {
	// CoverageMin is the minimum aggregate coverage percentage.
	CoverageMin float64

	// MutationMin is the minimum kill percentage.
	MutationMin float64

	// StrictZeroSurvivors fails the gate on any surviving mutant even
	// when the kill ratio meets MutationMin. When false, survivors above
	// the threshold only warn.
	StrictZeroSurvivors bool

	// Engine selects the mutation engine: "cosmic-ray", "mutmut", or ""
	// for the first engine available on PATH.
	Engine string

	// EngineConfig is the engine's own config file (cosmic-ray config.toml).
	EngineConfig string

	// SessionDB is the engine's on-disk session store.
	SessionDB string

	// LogDir receives the raw output log and the survivors report.
	LogDir string

	// CoverageCommand is the instrumented test-suite invocation.
	CoverageCommand []string

	// WorkDir is the root of the code under test.
	WorkDir string

	// Timeout bounds the whole gate run. Zero disables the bound.
	Timeout time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CoverageMin:         DefaultMinScore,
		MutationMin:         DefaultMinScore,
		StrictZeroSurvivors: true,
		EngineConfig:        "config.toml",
		SessionDB:           "cr_session.sqlite",
		LogDir:              "logs",
		CoverageCommand:     []string{"pytest", "--cov=src", "--cov-report=term-missing"},
		WorkDir:             ".",
		Timeout:             30 * time.Minute,
	}
}

// Load builds the effective configuration: defaults, then the project
// file in workDir (when present), then environment overrides.
func Load(workDir string) (*Config, error) {
	cfg := Default()
	cfg.WorkDir = workDir

	if err := cfg.mergeProjectFile(workDir); err != nil {
		return nil, err
	}
	cfg.mergeEnv()

	return cfg, nil
}

// mergeProjectFile applies .mutagate.yaml (or .mutagate.yml) when present.
func (c *Config) mergeProjectFile(dir string) error {
	path := filepath.Join(dir, ".mutagate.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(dir, ".mutagate.yml")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project config: %w", err)
	}

	// Decoded through a shadow struct so absent keys keep their defaults
	// and the timeout accepts duration strings like "30m".
	var file struct {
		CoverageMin         *float64 `yaml:"coverage_min"`
		MutationMin         *float64 `yaml:"mutation_min"`
		StrictZeroSurvivors *bool    `yaml:"strict_zero_survivors"`
		Engine              string   `yaml:"engine"`
		EngineConfig        string   `yaml:"engine_config"`
		SessionDB           string   `yaml:"session_db"`
		LogDir              string   `yaml:"log_dir"`
		CoverageCommand     []string `yaml:"coverage_command"`
		Timeout             string   `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if file.CoverageMin != nil {
		c.CoverageMin = *file.CoverageMin
	}
	if file.MutationMin != nil {
		c.MutationMin = *file.MutationMin
	}
	if file.StrictZeroSurvivors != nil {
		c.StrictZeroSurvivors = *file.StrictZeroSurvivors
	}
	if file.Engine != "" {
		c.Engine = file.Engine
	}
	if file.EngineConfig != "" {
		c.EngineConfig = file.EngineConfig
	}
	if file.SessionDB != "" {
		c.SessionDB = file.SessionDB
	}
	if file.LogDir != "" {
		c.LogDir = file.LogDir
	}
	if len(file.CoverageCommand) > 0 {
		c.CoverageCommand = file.CoverageCommand
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", file.Timeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// mergeEnv applies MUTAGATE_* overrides. Absent or unparsable numeric
// values leave the current setting untouched.
func (c *Config) mergeEnv() {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c.CoverageMin = floatOr(v.GetString("coverage_min"), c.CoverageMin)
	c.MutationMin = floatOr(v.GetString("mutation_min"), c.MutationMin)

	if s := v.GetString("engine"); s != "" {
		c.Engine = s
	}
	if s := v.GetString("engine_config"); s != "" {
		c.EngineConfig = s
	}
	if s := v.GetString("session_db"); s != "" {
		c.SessionDB = s
	}
	if s := v.GetString("log_dir"); s != "" {
		c.LogDir = s
	}
	if s := v.GetString("strict_zero_survivors"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			c.StrictZeroSurvivors = b
		}
	}
	if s := v.GetString("timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.Timeout = d
		}
	}
}

// Validate checks threshold sanity.
func (c *Config) Validate() error {
	if c.CoverageMin < 0 || c.CoverageMin > 100 {
		return fmt.Errorf("coverage_min must be in [0,100], got %.1f", c.CoverageMin)
	}
	if c.MutationMin < 0 || c.MutationMin > 100 {
		return fmt.Errorf("mutation_min must be in [0,100], got %.1f", c.MutationMin)
	}
	if len(c.CoverageCommand) == 0 {
		return fmt.Errorf("coverage_command must not be empty")
	}
	return nil
}

// RawLogPath is the fixed destination for the verbatim engine output.
func (c *Config) RawLogPath() string {
	return filepath.Join(c.LogDir, "mutation_output.log")
}

// SurvivorsPath is the fixed destination for the survivors report.
func (c *Config) SurvivorsPath() string {
	return filepath.Join(c.LogDir, "mutants_survived.json")
}

func floatOr(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}
