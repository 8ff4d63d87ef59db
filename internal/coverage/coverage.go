// Package coverage runs the project's test suite with coverage
// instrumentation and enforces a minimum aggregate percentage.
package coverage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mutagate-ci/mutagate/internal/execx"
)

// Result is the outcome of one coverage check.
type Result struct {
	// Passed reports whether Percentage met the minimum.
	Passed bool

	// Percentage is the aggregate coverage, 0.0 when undetected.
	Percentage float64

	// Detected distinguishes "0% coverage" from "could not read the
	// number". An undetected percentage always fails the gate.
	Detected bool
}

// Gate runs the coverage pre-check.
type Gate struct {
	// Command is the instrumented test-suite invocation, argv style.
	Command []string

	// WorkDir is the root of the code under test.
	WorkDir string

	// MinRequired is the minimum aggregate percentage.
	MinRequired float64
}

// Check runs the test suite and extracts the total coverage percentage.
// A missing or unparsable summary line yields Passed=false, never an
// error: the gate must not treat an unreadable number as success.
// A failing test-suite invocation is a tool error and aborts.
func (g *Gate) Check(ctx context.Context) (Result, error) {
	if len(g.Command) == 0 {
		return Result{}, fmt.Errorf("coverage command not configured")
	}

	res, err := execx.Run(ctx, execx.Spec{
		Name:   g.Command[0],
		Args:   g.Command[1:],
		Dir:    g.WorkDir,
		Strict: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("coverage run failed: %w", err)
	}

	pct, detected := extractTotalPercent(res.Stdout)

	result := Result{
		Percentage: pct,
		Detected:   detected,
		Passed:     detected && pct >= g.MinRequired,
	}

	if !detected {
		log.Warn().Msg("could not extract coverage percent from test output")
		return result, nil
	}

	log.Info().
		Float64("percentage", pct).
		Float64("min_required", g.MinRequired).
		Bool("passed", result.Passed).
		Msg("coverage check complete")

	return result, nil
}

// extractTotalPercent scans for lines containing both "TOTAL" and "%" and
// parses the last whitespace-delimited token of the LAST such line. Using
// the last match avoids silently picking up a non-total line when the
// tool prints more than one.
func extractTotalPercent(output string) (float64, bool) {
	var candidate string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "TOTAL") && strings.Contains(line, "%") {
			candidate = line
		}
	}
	if candidate == "" {
		return 0, false
	}

	fields := strings.Fields(candidate)
	if len(fields) == 0 {
		return 0, false
	}

	token := strings.TrimSuffix(fields[len(fields)-1], "%")
	pct, err := strconv.ParseFloat(token, 64)
	if err != nil {
		log.Warn().Str("line", strings.TrimSpace(candidate)).Msg("unparsable coverage total line")
		return 0, false
	}

	return pct, true
}
