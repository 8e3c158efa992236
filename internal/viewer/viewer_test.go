package viewer

import (
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/config"
	"github.com/Garsondee/smartcam/internal/scenario"
)

func testGame(t *testing.T) *Game {
	t.Helper()
	build := func() (*scenario.World, error) {
		return scenario.New(
			scenario.WithName("viewer"),
			scenario.WithRun(5, 1),
			scenario.WithCamera("cam", orb.Point{0, 0}, 0, config.FOV{Angle: 90, Distance: 10, BlindSpot: 1}),
			scenario.WithTarget("t", orb.Point{4, 0}),
			scenario.WithTarget("far", orb.Point{30, 10}),
		)
	}
	g, err := New(build, 800, 600, orb.Point{}, 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestAdvance_SamplesOnInterval(t *testing.T) {
	g := testGame(t)
	if err := g.advance(0.5); err != nil {
		t.Fatal(err)
	}
	if g.samples != nil {
		t.Fatal("no sample expected before t=1")
	}
	if err := g.advance(1); err != nil {
		t.Fatal(err)
	}
	if g.samples["1-coverage"] != 0.5 {
		t.Fatalf("expected half the targets covered, got %v", g.samples["1-coverage"])
	}
	if g.World().Engine.Time() != 1.5 {
		t.Fatalf("expected t=1.5, got %v", g.World().Engine.Time())
	}
}

func TestAdvance_StopsAtEnd(t *testing.T) {
	g := testGame(t)
	for i := 0; i < 10; i++ {
		if err := g.advance(1); err != nil {
			t.Fatal(err)
		}
	}
	if got := g.World().Engine.Time(); got != 5 {
		t.Fatalf("expected the run to stop at 5, got %v", got)
	}
}

func TestSpeeds(t *testing.T) {
	if faster(1) != 2 || faster(8) != 8 {
		t.Fatal("faster should step up and saturate")
	}
	if slower(1) != 0.5 || slower(0) != 0 {
		t.Fatal("slower should step down and saturate")
	}
	if faster(1.5) != 2 || slower(1.5) != 1 {
		t.Fatal("off-list speeds should snap to the neighbours")
	}
}

func TestSummary_ListsSeenTargets(t *testing.T) {
	g := testGame(t)
	if err := g.advance(1); err != nil {
		t.Fatal(err)
	}
	s := g.Summary()
	for _, want := range []string{"scenario viewer", "1-coverage 0.50", "cam sees [t]"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestFit_FramesAllNodes(t *testing.T) {
	g := testGame(t)
	g.fit()
	for _, n := range g.World().Env.Nodes() {
		p := g.view.ViewPoint(g.World().Env.Position(n))
		if p[0] < 0 || p[0] > 800 || p[1] < 0 || p[1] > 600 {
			t.Fatalf("node %s off screen at %v", n.Label(), p)
		}
	}
}

func TestRestart(t *testing.T) {
	g := testGame(t)
	_ = g.advance(2)
	old := g.World()
	g.restart()
	if g.World() == old || g.World().Engine.Time() != 0 || g.samples != nil {
		t.Fatal("restart should swap in a fresh world")
	}

	g.build = func() (*scenario.World, error) { return nil, errors.New("boom") }
	g.restart()
	if !strings.Contains(g.status, "boom") || g.World() == nil {
		t.Fatal("a failed restart keeps the old world and reports")
	}
}
