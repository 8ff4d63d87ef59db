package mutation

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mutagate-ci/mutagate/internal/execx"
)

// Engine drives one external mutation-testing tool through its lifecycle
// and returns the raw output to be parsed.
type Engine interface {
	// Name returns the engine name.
	Name() string

	// Available checks whether the engine binary is on PATH.
	Available(ctx context.Context) bool

	// Run executes the engine and returns its raw combined output.
	// The returned string may be non-empty even when err is non-nil,
	// so callers can persist partial output for diagnostics.
	Run(ctx context.Context) (string, error)
}

// pytestAddopts isolates the engine's inner test runner from ambient
// pytest configuration that could change test selection. It is applied
// as a child-process overlay only, never to the gate's own environment.
const pytestAddopts = "-q -x --disable-warnings"

// CosmicRayEngine drives cosmic-ray through init, exec, and dump.
// Its dump output is line-delimited JSON.
type CosmicRayEngine struct {
	// Binary is the executable name (default "cosmic-ray").
	Binary string

	// Config is the path to the engine's config.toml.
	Config string

	// SessionDB is the path to the SQLite session store.
	SessionDB string

	// WorkDir is the root of the code under test.
	WorkDir string
}

// NewCosmicRayEngine creates a cosmic-ray driver.
func NewCosmicRayEngine(configPath, sessionDB, workDir string) *CosmicRayEngine {
	return &CosmicRayEngine{
		Binary:    "cosmic-ray",
		Config:    configPath,
		SessionDB: sessionDB,
		WorkDir:   workDir,
	}
}

func (e *CosmicRayEngine) Name() string { return "cosmic-ray" }

func (e *CosmicRayEngine) Available(ctx context.Context) bool {
	_, err := execx.LookPath(e.Binary)
	return err == nil
}

func (e *CosmicRayEngine) Run(ctx context.Context) (string, error) {
	if _, err := os.Stat(e.SessionDB); os.IsNotExist(err) {
		log.Info().Str("db", e.SessionDB).Msg("session store not found, initializing")
		if _, err := execx.Run(ctx, execx.Spec{
			Name:   e.Binary,
			Args:   []string{"init", e.Config, e.SessionDB, "--force"},
			Dir:    e.WorkDir,
			Strict: true,
		}); err != nil {
			return "", fmt.Errorf("session init failed: %w", err)
		}
	} else {
		log.Info().Str("db", e.SessionDB).Msg("session store exists, skipping initialization")
	}

	if _, err := execx.Run(ctx, execx.Spec{
		Name:   e.Binary,
		Args:   []string{"exec", e.Config, e.SessionDB},
		Dir:    e.WorkDir,
		Env:    map[string]string{"PYTEST_ADDOPTS": pytestAddopts},
		Strict: true,
	}); err != nil {
		return "", fmt.Errorf("mutation run failed: %w", err)
	}

	dump, err := execx.Run(ctx, execx.Spec{
		Name:   e.Binary,
		Args:   []string{"dump", e.SessionDB},
		Dir:    e.WorkDir,
		Strict: true,
	})
	if err != nil {
		return dump.Combined(), fmt.Errorf("report dump failed: %w", err)
	}

	return dump.Combined(), nil
}

// MutmutEngine drives mutmut through run and results. Its output is free
// text: an emoji ticker from run and a per-mutant listing from results.
type MutmutEngine struct {
	// Binary is the executable name (default "mutmut").
	Binary string

	// WorkDir is the root of the code under test.
	WorkDir string
}

// NewMutmutEngine creates a mutmut driver.
func NewMutmutEngine(workDir string) *MutmutEngine {
	return &MutmutEngine{
		Binary:  "mutmut",
		WorkDir: workDir,
	}
}

func (e *MutmutEngine) Name() string { return "mutmut" }

func (e *MutmutEngine) Available(ctx context.Context) bool {
	_, err := execx.LookPath(e.Binary)
	return err == nil
}

func (e *MutmutEngine) Run(ctx context.Context) (string, error) {
	// Non-strict: mutmut exits non-zero whenever mutants survive, and
	// that verdict belongs to the parser, not the process runner.
	run, err := execx.Run(ctx, execx.Spec{
		Name: e.Binary,
		Args: []string{"run"},
		Dir:  e.WorkDir,
		Env:  map[string]string{"PYTEST_ADDOPTS": pytestAddopts},
	})
	if err != nil {
		return run.Combined(), fmt.Errorf("mutation run failed: %w", err)
	}
	if run.ExitCode != 0 {
		log.Info().Int("exit_code", run.ExitCode).Msg("mutation run exited non-zero, deferring to parsed output")
	}

	// The per-mutant listing lives in a separate results step; a failure
	// here leaves us with the ticker output only.
	results, err := execx.Run(ctx, execx.Spec{
		Name: e.Binary,
		Args: []string{"results"},
		Dir:  e.WorkDir,
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not retrieve results listing")
		return run.Combined(), nil
	}

	parts := []string{run.Combined()}
	if out := strings.TrimSpace(results.Combined()); out != "" {
		parts = append(parts, results.Combined())
	}
	return strings.Join(parts, "\n"), nil
}

// SelectEngine picks the engine by name, or the first one available on
// PATH when name is empty. No usable engine is a configuration error.
func SelectEngine(ctx context.Context, name string, candidates ...Engine) (Engine, error) {
	if name != "" {
		for _, e := range candidates {
			if e.Name() == name {
				if !e.Available(ctx) {
					return nil, fmt.Errorf("%w: %s", execx.ErrToolNotFound, name)
				}
				return e, nil
			}
		}
		return nil, fmt.Errorf("unknown mutation engine: %s", name)
	}

	for _, e := range candidates {
		if e.Available(ctx) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no mutation engine on PATH", execx.ErrToolNotFound)
}
