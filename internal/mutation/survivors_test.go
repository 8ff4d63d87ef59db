package mutation

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func sampleSurvivors() []Job {
	return []Job{
		{ModulePath: "src/pokemon.py", OperatorName: "core/ReplaceComparisonOperator", Occurrence: 4, TestOutcome: "survived", WorkerOutcome: "normal"},
		{ModulePath: "src/cart.py", OperatorName: "core/NumberReplacer", Occurrence: 1, TestOutcome: "survived", WorkerOutcome: "normal", Diff: "- total - discount\n+ total + discount"},
		{ModulePath: "src/cart.py", OperatorName: "core/NumberReplacer", Occurrence: 0, TestOutcome: "timeout", WorkerOutcome: "abnormal"},
	}
}

func TestWriteSurvivors_StructuredRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "mutants_survived.json")
	o := Outcome{Tier: TierStructured, Survivors: sampleSurvivors()}

	count, err := WriteSurvivors(o, path)
	if err != nil {
		t.Fatalf("WriteSurvivors() error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	back, err := ReadSurvivors(path)
	if err != nil {
		t.Fatalf("ReadSurvivors() error: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("len(back) = %d, want 3", len(back))
	}

	// Same module/operator/occurrence triples come back, sorted.
	want := []struct {
		module   string
		operator string
		occ      int
	}{
		{"src/cart.py", "core/NumberReplacer", 0},
		{"src/cart.py", "core/NumberReplacer", 1},
		{"src/pokemon.py", "core/ReplaceComparisonOperator", 4},
	}
	for i, w := range want {
		if back[i].ModulePath != w.module || back[i].OperatorName != w.operator || back[i].Occurrence != w.occ {
			t.Errorf("back[%d] = %s/%s/%d, want %s/%s/%d",
				i, back[i].ModulePath, back[i].OperatorName, back[i].Occurrence, w.module, w.operator, w.occ)
		}
	}
}

func TestWriteSurvivors_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mutants_survived.json")

	// Reversed input order must not change the bytes on disk.
	first := Outcome{Tier: TierStructured, Survivors: sampleSurvivors()}
	reversed := sampleSurvivors()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second := Outcome{Tier: TierStructured, Survivors: reversed}

	if _, err := WriteSurvivors(first, path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	a, _ := os.ReadFile(path)

	if _, err := WriteSurvivors(second, path); err != nil {
		t.Fatalf("second write: %v", err)
	}
	b, _ := os.ReadFile(path)

	if !bytes.Equal(a, b) {
		t.Error("repeated writes with the same survivors must be byte-identical")
	}
}

func TestWriteSurvivors_OverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutants_survived.json")

	big := Outcome{Tier: TierStructured, Survivors: sampleSurvivors()}
	if _, err := WriteSurvivors(big, path); err != nil {
		t.Fatalf("WriteSurvivors() error: %v", err)
	}

	empty := Outcome{Tier: TierStructured}
	count, err := WriteSurvivors(empty, path)
	if err != nil {
		t.Fatalf("WriteSurvivors() error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "[]" {
		t.Errorf("empty report = %q, want []", string(data))
	}
}

func TestWriteSurvivors_HeuristicLinesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutants_survived.json")
	o := Outcome{
		Tier: TierHeuristic,
		SurvivorLines: []string{
			"mutant 3: SURVIVED",
			"mutant 7: SURVIVED",
		},
	}

	count, err := WriteSurvivors(o, path)
	if err != nil {
		t.Fatalf("WriteSurvivors() error: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "mutant 3: SURVIVED\nmutant 7: SURVIVED" {
		t.Errorf("unexpected report contents: %q", string(data))
	}
}

func TestWriteRawLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mutation_output.log")

	if err := WriteRawLog("raw engine output\n", path); err != nil {
		t.Fatalf("WriteRawLog() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "raw engine output\n" {
		t.Errorf("log contents = %q", string(data))
	}

	// Second run overwrites, never appends.
	if err := WriteRawLog("second run", path); err != nil {
		t.Fatalf("WriteRawLog() error: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second run" {
		t.Errorf("log contents after rewrite = %q", string(data))
	}
}

func TestReadSurvivors_MissingFile(t *testing.T) {
	_, err := ReadSurvivors(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected error for missing report")
	}
}
