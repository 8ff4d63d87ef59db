// Package gate orchestrates the full pipeline: coverage pre-check,
// mutation run, parse, survivors report, and the pass/fail decision.
package gate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mutagate-ci/mutagate/internal/config"
	"github.com/mutagate-ci/mutagate/internal/coverage"
	"github.com/mutagate-ci/mutagate/internal/mutation"
	"github.com/mutagate-ci/mutagate/internal/vcs"
)

// ErrThreshold marks a normal negative outcome: the gate did its job and
// the score was not good enough. Distinct from configuration and tool
// errors, which also exit non-zero.
var ErrThreshold = errors.New("gate threshold not met")

// Decision is the mutation verdict for one run.
type Decision struct {
	Passed bool `json:"passed"`

	// KillPercentage is killed/(killed+survived)*100, 0.0 when the
	// denominator is zero or counts were unavailable.
	KillPercentage float64 `json:"kill_percentage"`

	// CountsAvailable is false when only the survivor-presence
	// heuristic (or no signal at all) was found.
	CountsAvailable bool `json:"counts_available"`

	// Survivors is the surviving-mutant count under the best signal.
	Survivors int `json:"survivors"`

	Reason string `json:"reason"`
}

// Decide applies the three-tier mutation policy to a parsed outcome.
//
// With counts: fail below minScore; with strictZero, any survivor fails
// even above it. A run with zero killable mutants passes only when the
// survivor list is also empty, so an all-skipped run is never reported
// as a perfect score. Without counts: any survivor line fails, none
// passes.
func Decide(o mutation.Outcome, minScore float64, strictZero bool) Decision {
	d := Decision{
		CountsAvailable: o.HasCounts(),
		Survivors:       o.SurvivorCount(),
	}

	if !d.CountsAvailable {
		if d.Survivors > 0 {
			d.Reason = fmt.Sprintf("%d surviving mutants detected (no exact counts)", d.Survivors)
			return d
		}
		d.Passed = true
		d.Reason = "no survivors detected"
		return d
	}

	d.KillPercentage = o.Summary.KillPercentage()
	killable := o.Summary.Killed + o.Summary.Survived

	if killable == 0 {
		if d.Survivors > 0 {
			d.Reason = fmt.Sprintf("no killable mutants but %d survivors recorded", d.Survivors)
			return d
		}
		d.Passed = true
		d.Reason = "no killable mutants and no survivors"
		return d
	}

	if d.KillPercentage < minScore {
		d.Reason = fmt.Sprintf("kill percentage %.2f%% below minimum %.2f%%", d.KillPercentage, minScore)
		return d
	}

	if d.Survivors > 0 && strictZero {
		d.Reason = fmt.Sprintf("%d mutants survived despite meeting the %.2f%% minimum", d.Survivors, minScore)
		return d
	}

	d.Passed = true
	if d.Survivors > 0 {
		d.Reason = fmt.Sprintf("kill percentage %.2f%% meets minimum, %d survivors tolerated", d.KillPercentage, d.Survivors)
	} else {
		d.Reason = fmt.Sprintf("kill percentage %.2f%% meets minimum %.2f%%", d.KillPercentage, minScore)
	}
	return d
}

// RunReport is the persisted record of one gate run.
type RunReport struct {
	RunID       string    `json:"run_id"`
	Commit      string    `json:"commit,omitempty"`
	Engine      string    `json:"engine,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	CoveragePercentage float64 `json:"coverage_percentage"`
	CoverageDetected   bool    `json:"coverage_detected"`
	CoveragePassed     bool    `json:"coverage_passed"`
	CoverageMin        float64 `json:"coverage_min"`

	MutationSkipped  bool             `json:"mutation_skipped"`
	MutationMin      float64          `json:"mutation_min"`
	ParserTier       string           `json:"parser_tier,omitempty"`
	Summary          mutation.Summary `json:"summary"`
	SurvivorsWritten int              `json:"survivors_written"`
	Decision         Decision         `json:"decision"`
}

// Gate wires the pipeline stages together.
type Gate struct {
	cfg *config.Config

	// engine overrides automatic selection; used by tests.
	engine mutation.Engine

	now func() time.Time
}

// New creates a gate for the given configuration.
func New(cfg *config.Config) *Gate {
	return &Gate{cfg: cfg, now: time.Now}
}

// WithEngine pins the mutation engine instead of probing PATH.
func (g *Gate) WithEngine(e mutation.Engine) *Gate {
	g.engine = e
	return g
}

// Run executes the pipeline. The returned report is non-nil whenever any
// stage ran, including on failure; err is non-nil on every failure path,
// threshold misses included, so callers can map it to exit code 1.
func (g *Gate) Run(ctx context.Context) (*RunReport, error) {
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	report := &RunReport{
		RunID:       uuid.NewString(),
		Commit:      vcs.HeadCommit(g.cfg.WorkDir),
		GeneratedAt: g.now().UTC(),
		CoverageMin: g.cfg.CoverageMin,
		MutationMin: g.cfg.MutationMin,
	}

	cov, err := (&coverage.Gate{
		Command:     g.cfg.CoverageCommand,
		WorkDir:     g.cfg.WorkDir,
		MinRequired: g.cfg.CoverageMin,
	}).Check(ctx)
	if err != nil {
		return report, err
	}

	report.CoveragePercentage = cov.Percentage
	report.CoverageDetected = cov.Detected
	report.CoveragePassed = cov.Passed

	// Mutation testing is expensive and meaningless on an undertested
	// codebase, so a coverage miss short-circuits the rest.
	if !cov.Passed {
		report.MutationSkipped = true
		g.writeRunReport(report)
		if !cov.Detected {
			return report, fmt.Errorf("%w: coverage percentage undetected", ErrThreshold)
		}
		return report, fmt.Errorf("%w: coverage %.1f%% below minimum %.1f%%", ErrThreshold, cov.Percentage, g.cfg.CoverageMin)
	}

	engine := g.engine
	if engine == nil {
		engine, err = mutation.SelectEngine(ctx, g.cfg.Engine,
			mutation.NewCosmicRayEngine(g.cfg.EngineConfig, g.cfg.SessionDB, g.cfg.WorkDir),
			mutation.NewMutmutEngine(g.cfg.WorkDir),
		)
		if err != nil {
			return report, err
		}
	}
	report.Engine = engine.Name()
	log.Info().Str("engine", engine.Name()).Msg("running mutation testing")

	raw, runErr := engine.Run(ctx)
	if raw != "" {
		if err := mutation.WriteRawLog(raw, g.cfg.RawLogPath()); err != nil {
			return report, err
		}
	}
	if runErr != nil {
		return report, runErr
	}

	outcome := mutation.Parse(raw)
	report.ParserTier = outcome.Tier.String()
	report.Summary = outcome.Summary

	count, err := mutation.WriteSurvivors(outcome, g.cfg.SurvivorsPath())
	if err != nil {
		return report, err
	}
	report.SurvivorsWritten = count

	decision := Decide(outcome, g.cfg.MutationMin, g.cfg.StrictZeroSurvivors)
	report.Decision = decision

	if decision.Passed && decision.Survivors > 0 {
		log.Warn().Int("survivors", decision.Survivors).Msg("surviving mutants tolerated by configuration")
	}

	g.writeRunReport(report)

	log.Info().
		Str("tier", report.ParserTier).
		Int("killed", outcome.Summary.Killed).
		Int("survived", outcome.Summary.Survived).
		Float64("kill_percentage", decision.KillPercentage).
		Bool("passed", decision.Passed).
		Msg("mutation gate decision")

	if !decision.Passed {
		return report, fmt.Errorf("%w: %s", ErrThreshold, decision.Reason)
	}
	return report, nil
}

// writeRunReport persists the run record next to the survivors report.
// Best effort: the run record is an audit artifact, not a gate input.
func (g *Gate) writeRunReport(report *RunReport) {
	path := filepath.Join(g.cfg.LogDir, "gate_run.json")
	if err := os.MkdirAll(g.cfg.LogDir, 0755); err != nil {
		log.Warn().Err(err).Msg("could not create log directory for run record")
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("could not marshal run record")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Msg("could not write run record")
	}
}
