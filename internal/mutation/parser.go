package mutation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Parse converts raw engine output into a normalized Outcome by trying
// adapters in descending confidence order. The first adapter that finds
// a signal wins; signals from different tiers are never combined.
func Parse(raw string) Outcome {
	if o, ok := parseStructured(raw); ok {
		return o
	}
	if o, ok := parseSummaryLines(raw); ok {
		return o
	}
	if o, ok := parseLooseMentions(raw); ok {
		return o
	}
	if o, ok := parseSurvivorLines(raw); ok {
		return o
	}
	return Outcome{Tier: TierNone}
}

// record mirrors the engines' JSON shapes: either a single mutant or a
// container holding a mutations/results array.
type record struct {
	Job
	Mutations []Job `json:"mutations"`
	Results   []Job `json:"results"`
}

func (r record) jobs() []Job {
	if len(r.Mutations) > 0 {
		return r.Mutations
	}
	if len(r.Results) > 0 {
		return r.Results
	}
	return []Job{r.Job}
}

// parseStructured handles a whole-document JSON array/object as well as
// line-delimited JSON with tolerated array framing and trailing commas.
// Malformed lines are skipped with a warning, not fatal.
func parseStructured(raw string) (Outcome, bool) {
	jobs := wholeDocumentJobs(raw)
	if jobs == nil {
		jobs = lineDelimitedJobs(raw)
	}
	if len(jobs) == 0 {
		return Outcome{}, false
	}

	o := Outcome{Tier: TierStructured}
	for _, job := range jobs {
		o.Summary.Total++
		if job.TestOutcome == OutcomeKilled {
			o.Summary.Killed++
			continue
		}
		if job.TestOutcome == OutcomeSurvived {
			o.Summary.Survived++
		}
		o.Survivors = append(o.Survivors, job)
	}
	return o, true
}

func wholeDocumentJobs(raw string) []Job {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var recs []record
		if err := json.Unmarshal([]byte(trimmed), &recs); err == nil {
			var jobs []Job
			for _, r := range recs {
				jobs = append(jobs, r.jobs()...)
			}
			return jobs
		}
	}

	if strings.HasPrefix(trimmed, "{") {
		var rec record
		if err := json.Unmarshal([]byte(trimmed), &rec); err == nil {
			return rec.jobs()
		}
	}

	return nil
}

func lineDelimitedJobs(raw string) []Job {
	var jobs []Job
	for _, line := range strings.Split(raw, "\n") {
		text := strings.TrimSuffix(strings.TrimSpace(line), ",")
		if text == "" || text == "[" || text == "]" {
			continue
		}
		if !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err == nil {
			jobs = append(jobs, rec.jobs()...)
			continue
		}

		var recs []record
		if err := json.Unmarshal([]byte(text), &recs); err == nil {
			for _, r := range recs {
				jobs = append(jobs, r.jobs()...)
			}
			continue
		}

		log.Warn().Str("line", truncate(text, 120)).Msg("skipped invalid JSON line")
	}
	return jobs
}

var (
	// Explicit key-value summary lines, e.g. "KILLED: 18".
	kvKilledRe   = regexp.MustCompile(`(?m)^\s*KILLED:\s*(\d+)\b`)
	kvSurvivedRe = regexp.MustCompile(`(?m)^\s*SURVIVED:\s*(\d+)\b`)

	// The mutmut run ticker, e.g. "120/120  🎉 118  ⏰ 0  🤔 0  🙁 2".
	tickerRe = regexp.MustCompile(`(?s)(\d+)/(\d+).*?🎉\s*(\d+).*?🙁\s*(\d+)`)

	// Loose prose mentions, e.g. "killed 18 mutants".
	looseKilledRe   = regexp.MustCompile(`(?i)killed[^\d\n]{0,24}(\d+)`)
	looseSurvivedRe = regexp.MustCompile(`(?i)survived[^\d\n]{0,24}(\d+)`)
)

// parseSummaryLines matches explicit KILLED:/SURVIVED: key-value lines,
// or the engine's run ticker. The last occurrence wins.
func parseSummaryLines(raw string) (Outcome, bool) {
	killed, okK := lastInt(kvKilledRe, raw, 1)
	survived, okS := lastInt(kvSurvivedRe, raw, 1)
	if okK && okS {
		return summaryOutcome(TierSummary, killed, survived), true
	}

	if m := tickerRe.FindAllStringSubmatch(raw, -1); len(m) > 0 {
		last := m[len(m)-1]
		k, errK := strconv.Atoi(last[3])
		s, errS := strconv.Atoi(last[4])
		if errK == nil && errS == nil {
			return summaryOutcome(TierSummary, k, s), true
		}
	}

	return Outcome{}, false
}

// parseLooseMentions matches the first loose "killed N" and "survived N"
// word-number pairs; both must be present.
func parseLooseMentions(raw string) (Outcome, bool) {
	mk := looseKilledRe.FindStringSubmatch(raw)
	ms := looseSurvivedRe.FindStringSubmatch(raw)
	if mk == nil || ms == nil {
		return Outcome{}, false
	}

	k, errK := strconv.Atoi(mk[1])
	s, errS := strconv.Atoi(ms[1])
	if errK != nil || errS != nil {
		return Outcome{}, false
	}

	return summaryOutcome(TierLoose, k, s), true
}

// parseSurvivorLines counts lines mentioning survivors: the literal
// SURVIVED token or a ": survived" results marker. Presence only; the
// matched lines are kept for the report.
func parseSurvivorLines(raw string) (Outcome, bool) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.Contains(line, "SURVIVED") || strings.Contains(line, ": survived") {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Outcome{}, false
	}

	return Outcome{
		Tier:          TierHeuristic,
		SurvivorLines: lines,
	}, true
}

func summaryOutcome(tier Tier, killed, survived int) Outcome {
	return Outcome{
		Tier: tier,
		Summary: Summary{
			Killed:   killed,
			Survived: survived,
			Total:    killed + survived,
		},
	}
}

func lastInt(re *regexp.Regexp, s string, group int) (int, bool) {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(matches[len(matches)-1][group])
	if err != nil {
		return 0, false
	}
	return n, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
