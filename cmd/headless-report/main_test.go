package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Garsondee/smartcam/internal/persistence"
)

func TestSummarize_SkipsNaN(t *testing.T) {
	samples := []persistence.Sample{
		{Step: 1, Time: 1, Value: 0.5},
		{Step: 2, Time: 2, Value: math.NaN()},
		{Step: 3, Time: 3, Value: 1},
	}
	cs := summarize("1-coverage", samples)
	if cs.count != 2 || cs.mean != 0.75 {
		t.Fatalf("expected 2 values with mean 0.75, got n=%d mean=%v", cs.count, cs.mean)
	}
	if cs.min != 0.5 || cs.max != 1 {
		t.Fatalf("expected range 0.5..1, got %v..%v", cs.min, cs.max)
	}
}

func TestSummarize_AllNaN(t *testing.T) {
	cs := summarize("x", []persistence.Sample{{Value: math.NaN()}})
	if cs.count != 0 || !math.IsNaN(cs.mean) || !math.IsNaN(cs.min) {
		t.Fatalf("expected empty NaN summary, got %+v", cs)
	}
	if num(cs.mean) != "n/a" {
		t.Fatalf("expected n/a, got %s", num(cs.mean))
	}
}

func TestFirstReach(t *testing.T) {
	samples := []persistence.Sample{{Time: 1, Value: 0.2}, {Time: 2, Value: 1}, {Time: 3, Value: 1}}
	if got := firstReach(samples, 1); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := firstReach(samples[:1], 1); got != -1 {
		t.Fatalf("expected -1, got %v", got)
	}
	if timeString(-1) != "never" {
		t.Fatal("expected never for a missing time")
	}
}

func TestSortColumns_CoverageFirst(t *testing.T) {
	cols := []columnStats{{name: "ObjDist"}, {name: "1-coverage"}, {name: "CamDist"}, {name: "2-coverage"}}
	sortColumns(cols)
	want := []string{"2-coverage", "1-coverage", "CamDist", "ObjDist"}
	for i, c := range cols {
		if c.name != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], c.name)
		}
	}
}

func TestRunScenario_RecordsSamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	doc := `
name: report-test
run: {until: 3, sample_every: 1, coverage_k: 1}
cameras:
  - label: cam
    position: [0, 0]
    heading: 0
    fov: {angle: 90, distance: 10, blind_spot: 2}
targets:
  - label: t
    position: [5, 0]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := persistence.Open(persistence.MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs, err := runScenario(context.Background(), db, path, true, false, logger)
	if err != nil {
		t.Fatal(err)
	}
	if rs.scenario != "report-test" || rs.cameras != 1 || rs.nodes != 2 {
		t.Fatalf("unexpected run header %+v", rs)
	}
	if rs.firstFullCoverage != 1 {
		t.Fatalf("expected full coverage at t=1, got %v", rs.firstFullCoverage)
	}
	if rs.columns[0].name != "1-coverage" || rs.columns[0].count != 3 || rs.columns[0].mean != 1 {
		t.Fatalf("unexpected coverage column %+v", rs.columns[0])
	}
	runs, err := db.Runs()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one stored run, got %d (%v)", len(runs), err)
	}
}
