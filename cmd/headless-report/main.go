package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Garsondee/smartcam/internal/config"
	"github.com/Garsondee/smartcam/internal/persistence"
	"github.com/Garsondee/smartcam/internal/scenario"
)

type columnStats struct {
	name  string
	mean  float64
	count int
	min   float64
	max   float64
}

type runStats struct {
	id       uuid.UUID
	scenario string
	steps    int64
	simTime  float64
	cameras  int
	nodes    int

	firstFullCoverage float64 // -1 when 1-coverage never reached 1
	actionErrors      int
	columns           []columnStats
	simLog            string // formatted sim log, only with -verbose
}

func main() {
	var path string
	var dbPath string
	var velocity bool
	var verbose bool
	var list bool

	flag.StringVar(&path, "scenario", "", "scenario YAML file")
	flag.StringVar(&dbPath, "db", persistence.MemoryPath, "SQLite file for samples")
	flag.BoolVar(&velocity, "velocity", false, "also record the target speed histogram")
	flag.BoolVar(&verbose, "verbose", false, "debug logging and the per-activation sim log")
	flag.BoolVar(&list, "list", false, "list the runs stored in -db and exit")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := persistence.Open(dbPath)
	if err != nil {
		fail(err)
	}
	defer db.Close()

	if list {
		if err := printRuns(db); err != nil {
			fail(err)
		}
		return
	}
	if path == "" {
		fail(fmt.Errorf("-scenario is required"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rs, err := runScenario(ctx, db, path, velocity, verbose, logger)
	if err != nil {
		fail(err)
	}
	printRun(rs)
}

func fail(err error) {
	fmt.Printf("error: %v\n", err)
	os.Exit(1)
}

func runScenario(ctx context.Context, db *persistence.DB, path string, velocity, verbose bool, logger *slog.Logger) (runStats, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return runStats{}, err
	}
	w, err := scenario.FromConfig(cfg, filepath.Dir(path), logger)
	if err != nil {
		return runStats{}, err
	}
	w.Engine.Log.SetVerbose(verbose)
	if velocity {
		if err := w.TrackVelocity(); err != nil {
			return runStats{}, err
		}
	}

	id, err := db.StartRun(w.Name)
	if err != nil {
		return runStats{}, err
	}
	err = w.Run(ctx, func(step int64, t float64, samples map[string]float64) error {
		return db.RecordSamples(id, step, t, samples)
	})
	if err != nil {
		return runStats{}, err
	}

	rs := runStats{
		id:                id,
		scenario:          w.Name,
		steps:             w.Engine.Steps(),
		simTime:           w.Engine.Time(),
		cameras:           len(w.Cameras),
		nodes:             len(w.Env.Nodes()),
		firstFullCoverage: -1,
		actionErrors:      w.Engine.Log.CountCategory("action", "error"),
	}

	cols, err := db.Columns(id)
	if err != nil {
		return runStats{}, err
	}
	for _, c := range cols {
		samples, err := db.Samples(id, c)
		if err != nil {
			return runStats{}, err
		}
		rs.columns = append(rs.columns, summarize(c, samples))
		if c == "1-coverage" {
			rs.firstFullCoverage = firstReach(samples, 1)
		}
	}
	sortColumns(rs.columns)
	if verbose {
		rs.simLog = w.Engine.Log.Format()
	}
	return rs, nil
}

// summarize skips NaN values; a column with none left has a NaN mean.
func summarize(name string, samples []persistence.Sample) columnStats {
	cs := columnStats{name: name, mean: math.NaN(), min: math.Inf(1), max: math.Inf(-1)}
	sum := 0.0
	for _, s := range samples {
		if math.IsNaN(s.Value) {
			continue
		}
		sum += s.Value
		cs.count++
		cs.min = math.Min(cs.min, s.Value)
		cs.max = math.Max(cs.max, s.Value)
	}
	if cs.count > 0 {
		cs.mean = sum / float64(cs.count)
	} else {
		cs.min, cs.max = math.NaN(), math.NaN()
	}
	return cs
}

func firstReach(samples []persistence.Sample, threshold float64) float64 {
	for _, s := range samples {
		if s.Value >= threshold {
			return s.Time
		}
	}
	return -1
}

// sortColumns puts the coverage columns first, highest k first, then the
// rest alphabetically.
func sortColumns(cols []columnStats) {
	sort.SliceStable(cols, func(i, j int) bool {
		ki, kj := coverageLevel(cols[i].name), coverageLevel(cols[j].name)
		if ki != kj {
			return ki > kj
		}
		return cols[i].name < cols[j].name
	})
}

func coverageLevel(name string) int {
	var k int
	if _, err := fmt.Sscanf(name, "%d-coverage", &k); err != nil || !strings.HasSuffix(name, "-coverage") {
		return 0
	}
	return k
}

func printRun(rs runStats) {
	fmt.Printf("=== Smart Camera Coverage Report ===\n")
	fmt.Printf("scenario=%s run=%s\n", rs.scenario, rs.id)
	fmt.Printf("nodes=%d cameras=%d steps=%s sim_time=%.1f\n",
		rs.nodes, rs.cameras, humanize.Comma(rs.steps), rs.simTime)
	fmt.Printf("first_full_coverage=%s action_errors=%d\n", timeString(rs.firstFullCoverage), rs.actionErrors)
	fmt.Println()
	fmt.Printf("%-12s %8s %8s %8s %6s\n", "column", "mean", "min", "max", "n")
	for _, c := range rs.columns {
		fmt.Printf("%-12s %8s %8s %8s %6d\n", c.name, num(c.mean), num(c.min), num(c.max), c.count)
	}
	if rs.simLog != "" {
		fmt.Println()
		fmt.Print(rs.simLog)
	}
}

func printRuns(db *persistence.DB) error {
	runs, err := db.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %-20s  %s\n", r.ID, r.Scenario, humanize.Time(r.Started()))
	}
	return nil
}

func timeString(t float64) string {
	if t < 0 {
		return "never"
	}
	return fmt.Sprintf("%.1f", t)
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return humanize.FtoaWithDigits(v, 4)
}
