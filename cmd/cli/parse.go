package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mutagate-ci/mutagate/internal/gate"
	"github.com/mutagate-ci/mutagate/internal/mutation"
)

func parseCmd() *cobra.Command {
	var (
		filePath    string
		mutationMin float64
		strictZero  bool
		survivorsTo string
	)

	cmd := &cobra.Command{
		Use:          "parse",
		Short:        "Re-evaluate a saved mutation tool dump without re-running it",
		SilenceUsage: true,
		Long: `Parse reads a raw mutation tool dump from an earlier run, extracts
the kill counts and surviving mutants, and applies the gate decision.

Examples:
  mutagate parse -f logs/mutation_output.log
  mutagate parse -f dump.txt --mutation-min 90 --survivors-out survived.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read dump: %w", err)
			}

			outcome := mutation.Parse(string(data))
			decision := gate.Decide(outcome, mutationMin, strictZero)

			if survivorsTo != "" {
				n, err := mutation.WriteSurvivors(outcome, survivorsTo)
				if err != nil {
					return fmt.Errorf("failed to write survivors report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d survivors to %s\n", n, survivorsTo)
			}

			displayOutcome(cmd.OutOrStdout(), outcome, decision)

			if !decision.Passed {
				return fmt.Errorf("%w: %s", gate.ErrThreshold, decision.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Raw mutation tool dump to parse")
	cmd.Flags().Float64Var(&mutationMin, "mutation-min", 80, "Minimum mutation kill percentage")
	cmd.Flags().BoolVar(&strictZero, "strict-survivors", true, "Fail on any surviving mutant even above the minimum")
	cmd.Flags().StringVar(&survivorsTo, "survivors-out", "", "Write the survivors report to this path")
	cmd.MarkFlagRequired("file")

	return cmd
}
