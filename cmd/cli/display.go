package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/mutagate-ci/mutagate/internal/gate"
	"github.com/mutagate-ci/mutagate/internal/mutation"
)

func passLabel(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// displayReport renders the full run summary as a table.
func displayReport(w io.Writer, r *gate.RunReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Value", "Minimum", "Result"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	coverageValue := "undetected"
	if r.CoverageDetected {
		coverageValue = fmt.Sprintf("%.1f%%", r.CoveragePercentage)
	}
	table.Append([]string{
		"coverage", coverageValue,
		fmt.Sprintf("%.1f%%", r.CoverageMin), passLabel(r.CoveragePassed),
	})

	if r.MutationSkipped {
		table.Append([]string{"mutation", "skipped", fmt.Sprintf("%.1f%%", r.MutationMin), "-"})
	} else {
		mutationValue := fmt.Sprintf("%d survivors", r.Decision.Survivors)
		if r.Decision.CountsAvailable {
			mutationValue = fmt.Sprintf("%.1f%%", r.Decision.KillPercentage)
		}
		table.Append([]string{
			"mutation", mutationValue,
			fmt.Sprintf("%.1f%%", r.MutationMin), passLabel(r.Decision.Passed),
		})
	}

	table.Render()

	if !r.MutationSkipped {
		fmt.Fprintf(w, "\nsignal: %s, killed: %d, survived: %d, survivors written: %d\n",
			r.ParserTier, r.Summary.Killed, r.Summary.Survived, r.SurvivorsWritten)
	}
	if r.Decision.Reason != "" {
		fmt.Fprintln(w, r.Decision.Reason)
	}
}

// displayOutcome renders a parsed dump and its decision, for the parse
// subcommand where no coverage run happened.
func displayOutcome(w io.Writer, o mutation.Outcome, d gate.Decision) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Signal", "Killed", "Survived", "Score", "Result"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	score := "-"
	if d.CountsAvailable {
		score = fmt.Sprintf("%.1f%%", d.KillPercentage)
	}
	table.Append([]string{
		o.Tier.String(),
		fmt.Sprintf("%d", o.Summary.Killed),
		fmt.Sprintf("%d", o.Summary.Survived),
		score,
		passLabel(d.Passed),
	})
	table.Render()

	fmt.Fprintln(w, d.Reason)
}
