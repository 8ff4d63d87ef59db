package main

import (
	"strings"
	"testing"

	"github.com/mutagate-ci/mutagate/internal/gate"
	"github.com/mutagate-ci/mutagate/internal/mutation"
)

func TestDisplayReport_FullRun(t *testing.T) {
	var buf strings.Builder
	displayReport(&buf, &gate.RunReport{
		CoveragePercentage: 91.0,
		CoverageDetected:   true,
		CoveragePassed:     true,
		CoverageMin:        80,
		MutationMin:        80,
		ParserTier:         "structured",
		Summary:            mutation.Summary{Killed: 18, Survived: 2, Total: 20},
		SurvivorsWritten:   2,
		Decision: gate.Decision{
			Passed:          false,
			KillPercentage:  90.0,
			CountsAvailable: true,
			Survivors:       2,
			Reason:          "2 mutants survived despite meeting the 80.00% minimum",
		},
	})

	out := buf.String()
	for _, want := range []string{"91.0%", "90.0%", "PASS", "FAIL", "killed: 18", "survived: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayReport_CoverageShortCircuit(t *testing.T) {
	var buf strings.Builder
	displayReport(&buf, &gate.RunReport{
		CoverageDetected: false,
		CoverageMin:      80,
		MutationMin:      80,
		MutationSkipped:  true,
	})

	out := buf.String()
	if !strings.Contains(out, "undetected") {
		t.Errorf("expected undetected coverage marker, got:\n%s", out)
	}
	if !strings.Contains(out, "skipped") {
		t.Errorf("expected skipped mutation row, got:\n%s", out)
	}
	if strings.Contains(out, "survivors written") {
		t.Errorf("skipped run must not print mutation detail line:\n%s", out)
	}
}

func TestDisplayOutcome_NoCounts(t *testing.T) {
	o := mutation.Outcome{
		Tier:          mutation.TierHeuristic,
		SurvivorLines: []string{"a: SURVIVED"},
	}
	d := gate.Decide(o, 80, true)

	var buf strings.Builder
	displayOutcome(&buf, o, d)

	out := buf.String()
	if !strings.Contains(out, "heuristic") {
		t.Errorf("expected tier name in output:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") {
		t.Errorf("expected FAIL label:\n%s", out)
	}
}

func TestPassLabel(t *testing.T) {
	if passLabel(true) != "PASS" || passLabel(false) != "FAIL" {
		t.Error("passLabel mapping broken")
	}
}
