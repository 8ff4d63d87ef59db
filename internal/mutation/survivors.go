package mutation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// WriteRawLog persists the engine's combined output verbatim before any
// parsing, so a parse failure never loses diagnostic information. The
// destination is overwritten each run.
func WriteRawLog(raw, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		return fmt.Errorf("failed to write raw output log: %w", err)
	}
	return nil
}

// WriteSurvivors persists the survivors report for human triage and
// returns the number of records written. The containing directory is
// created when absent and the file is fully overwritten each run.
//
// Structured survivors are serialized as a JSON array with every
// captured field, sorted by module path, operator, and occurrence so
// repeated runs with the same survivors are byte-identical. When only
// heuristic lines were available, the matching raw lines are written
// verbatim instead.
func WriteSurvivors(o Outcome, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create report directory: %w", err)
	}

	var (
		data  []byte
		count int
		err   error
	)

	if o.Tier == TierHeuristic {
		count = len(o.SurvivorLines)
		data = []byte(strings.Join(o.SurvivorLines, "\n"))
	} else {
		survivors := sortedSurvivors(o.Survivors)
		count = len(survivors)
		data, err = json.MarshalIndent(survivors, "", "  ")
		if err != nil {
			return 0, fmt.Errorf("failed to marshal survivors: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write survivors report: %w", err)
	}

	log.Info().Int("count", count).Str("path", path).Msg("saved survivors report")
	return count, nil
}

// ReadSurvivors loads a structured survivors report back.
func ReadSurvivors(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var survivors []Job
	if err := json.Unmarshal(data, &survivors); err != nil {
		return nil, fmt.Errorf("failed to parse survivors report: %w", err)
	}
	return survivors, nil
}

// sortedSurvivors returns a stable copy; the parser does not guarantee
// input order across engines. The marshaled empty list is [] not null.
func sortedSurvivors(in []Job) []Job {
	out := make([]Job, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModulePath != out[j].ModulePath {
			return out[i].ModulePath < out[j].ModulePath
		}
		if out[i].OperatorName != out[j].OperatorName {
			return out[i].OperatorName < out[j].OperatorName
		}
		return out[i].Occurrence < out[j].Occurrence
	})
	return out
}
