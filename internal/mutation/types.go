// Package mutation drives external mutation-testing engines and parses
// their output into killed/survived counts.
package mutation

// Test outcome literals as emitted by the engines.
const (
	OutcomeKilled      = "killed"
	OutcomeSurvived    = "survived"
	OutcomeTimeout     = "timeout"
	OutcomeIncompetent = "incompetent"
)

// Job is one mutant record parsed from structured engine output.
type Job struct {
	ModulePath    string `json:"module_path"`
	OperatorName  string `json:"operator_name"`
	Occurrence    int    `json:"occurrence"`
	TestOutcome   string `json:"test_outcome"`
	WorkerOutcome string `json:"worker_outcome"`
	Output        string `json:"output"`
	Diff          string `json:"diff"`
}

// Summary aggregates mutant counts for one run.
//
// Survived counts only records whose outcome is literally "survived";
// Total counts every record, so killed + survived <= total. Timeout and
// incompetent mutants are excluded from the kill-ratio denominator.
type Summary struct {
	Killed   int `json:"killed"`
	Survived int `json:"survived"`
	Total    int `json:"total"`
}

// KillPercentage is killed / (killed + survived) * 100, and exactly 0.0
// when no mutant was killable.
func (s Summary) KillPercentage() float64 {
	killable := s.Killed + s.Survived
	if killable == 0 {
		return 0.0
	}
	return float64(s.Killed) / float64(killable) * 100
}

// Tier identifies which parser adapter produced the result, in ascending
// confidence order. Signals from different tiers are never combined.
type Tier int

const (
	// TierNone means no signal was found at all.
	TierNone Tier = iota

	// TierHeuristic counted lines mentioning survivors; presence only.
	TierHeuristic

	// TierLoose matched a loose "killed N" / "survived N" mention.
	TierLoose

	// TierSummary matched an explicit key-value or ticker summary.
	TierSummary

	// TierStructured parsed per-mutant JSON records.
	TierStructured
)

func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierSummary:
		return "summary"
	case TierLoose:
		return "loose"
	case TierHeuristic:
		return "heuristic"
	default:
		return "none"
	}
}

// Outcome is the parser's normalized view of one engine run.
type Outcome struct {
	Tier    Tier
	Summary Summary

	// Survivors holds full records when the structured tier matched.
	Survivors []Job

	// SurvivorLines holds the matching raw lines when only the
	// heuristic tier matched.
	SurvivorLines []string
}

// HasCounts reports whether killed/survived counts are trustworthy.
// The heuristic tier only detects survivor presence, not a ratio.
func (o Outcome) HasCounts() bool {
	return o.Tier >= TierLoose
}

// SurvivorCount is the number of surviving mutants under the best
// available signal.
func (o Outcome) SurvivorCount() int {
	switch o.Tier {
	case TierStructured:
		return len(o.Survivors)
	case TierHeuristic:
		return len(o.SurvivorLines)
	default:
		return o.Summary.Survived
	}
}
