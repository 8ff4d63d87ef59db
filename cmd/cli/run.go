package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mutagate-ci/mutagate/internal/config"
	"github.com/mutagate-ci/mutagate/internal/gate"
)

func runCmd() *cobra.Command {
	var (
		workDir      string
		engineName   string
		engineConfig string
		sessionDB    string
		logDir       string
		coverageMin  float64
		mutationMin  float64
		strictZero   bool
		timeout      time.Duration
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the coverage pre-check and mutation gate",
		SilenceUsage: true,
		Long: `Run executes the full gate: the coverage command first, then the
selected mutation tool (cosmic-ray or mutmut), and exits non-zero when
either threshold is missed.

Examples:
  mutagate run
  mutagate run --engine mutmut --mutation-min 90
  mutagate run --work-dir ./service --coverage-min 85`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			cfg, err := config.Load(workDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Flags win over config file and environment.
			flagOverrides(cmd, cfg, engineName, engineConfig, sessionDB, logDir,
				coverageMin, mutationMin, strictZero, timeout)

			setupFileLogging(cfg.LogDir)

			report, err := gate.New(cfg).Run(cmd.Context())
			if report != nil {
				displayReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				if errors.Is(err, gate.ErrThreshold) {
					log.Error().Err(err).Msg("gate failed")
				}
				return err
			}

			log.Info().Msg("gate passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&workDir, "work-dir", "w", ".", "Project directory to test")
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "Mutation tool: cosmic-ray or mutmut (auto-detected if empty)")
	cmd.Flags().StringVar(&engineConfig, "engine-config", "", "Mutation tool configuration file")
	cmd.Flags().StringVar(&sessionDB, "session-db", "", "Session database path (cosmic-ray)")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for raw logs and reports")
	cmd.Flags().Float64Var(&coverageMin, "coverage-min", config.DefaultMinScore, "Minimum line coverage percentage")
	cmd.Flags().Float64Var(&mutationMin, "mutation-min", config.DefaultMinScore, "Minimum mutation kill percentage")
	cmd.Flags().BoolVar(&strictZero, "strict-survivors", true, "Fail on any surviving mutant even above the minimum")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall run timeout (0 uses the configured default)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// flagOverrides applies explicitly set flags on top of the loaded config.
func flagOverrides(cmd *cobra.Command, cfg *config.Config,
	engineName, engineConfig, sessionDB, logDir string,
	coverageMin, mutationMin float64, strictZero bool, timeout time.Duration,
) {
	if cmd.Flags().Changed("engine") {
		cfg.Engine = engineName
	}
	if cmd.Flags().Changed("engine-config") {
		cfg.EngineConfig = engineConfig
	}
	if cmd.Flags().Changed("session-db") {
		cfg.SessionDB = sessionDB
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if cmd.Flags().Changed("coverage-min") {
		cfg.CoverageMin = coverageMin
	}
	if cmd.Flags().Changed("mutation-min") {
		cfg.MutationMin = mutationMin
	}
	if cmd.Flags().Changed("strict-survivors") {
		cfg.StrictZeroSurvivors = strictZero
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
}
