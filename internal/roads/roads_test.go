package roads

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/movement"
	"github.com/Garsondee/smartcam/internal/sim"
)

// An L-shaped road (0,0)-(10,0)-(10,10) plus a detached stub far away.
const lRoad = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0,0],[10,0]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[10,0],[10,10]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[100,100],[110,100]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [5,5]}}
  ]
}`

func loadL(t *testing.T) *Graph {
	t.Helper()
	g, err := LoadGeoJSON([]byte(lRoad), sim.Planar{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return g
}

func TestLoadGeoJSON_MergesJunctions(t *testing.T) {
	g := loadL(t)
	if g.Len() != 5 {
		t.Fatalf("expected 5 vertices (shared corner merged, point skipped), got %d", g.Len())
	}
}

func TestLoadGeoJSON_Empty(t *testing.T) {
	if _, err := LoadGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`), sim.Planar{}); err == nil {
		t.Fatal("expected error for a network without roads")
	}
	if _, err := LoadGeoJSON([]byte(`not json`), sim.Planar{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindPath_FollowsRoad(t *testing.T) {
	g := loadL(t)
	path := g.FindPath(g.Nearest(orb.Point{0, 0}), g.Nearest(orb.Point{10, 10}))
	want := []orb.Point{{0, 0}, {10, 0}, {10, 10}}
	if len(path) != len(want) {
		t.Fatalf("expected %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, path)
		}
	}
}

func TestFindPath_Disconnected(t *testing.T) {
	g := loadL(t)
	if p := g.FindPath(g.Nearest(orb.Point{0, 0}), g.Nearest(orb.Point{110, 100})); p != nil {
		t.Fatalf("expected no path between components, got %v", p)
	}
}

func TestFindPath_OneWay(t *testing.T) {
	g := NewGraph(sim.Planar{})
	g.AddLineString(orb.LineString{{0, 0}, {5, 0}}, true)
	a, b := g.Nearest(orb.Point{0, 0}), g.Nearest(orb.Point{5, 0})
	if g.FindPath(a, b) == nil {
		t.Fatal("expected forward path")
	}
	if g.FindPath(b, a) != nil {
		t.Fatal("expected no path against a one-way road")
	}
}

func TestFindPath_PrefersCheaperRoute(t *testing.T) {
	g := NewGraph(sim.Planar{})
	// Direct but long detour vs short hop through (1,1).
	g.AddLineString(orb.LineString{{0, 0}, {0, 10}, {2, 10}, {2, 0}}, false)
	g.AddLineString(orb.LineString{{0, 0}, {1, 1}, {2, 0}}, false)
	path := g.FindPath(g.Nearest(orb.Point{0, 0}), g.Nearest(orb.Point{2, 0}))
	if len(path) != 3 || path[1] != (orb.Point{1, 1}) {
		t.Fatalf("expected route through (1,1), got %v", path)
	}
}

func TestRouter_WalksAlongRoad(t *testing.T) {
	g := loadL(t)
	env := sim.NewContinuous2D()
	r := NewRouter(g)
	target := orb.Point{10, 10}

	pos := orb.Point{0, 0}
	var err error
	pos, err = r.NextPosition(env, pos, target, 12)
	if err != nil {
		t.Fatal(err)
	}
	// 10 along x, then turn the corner for 2.
	if math.Abs(pos[0]-10) > 1e-9 || math.Abs(pos[1]-2) > 1e-9 {
		t.Fatalf("expected (10, 2), got %v", pos)
	}
	pos, _ = r.NextPosition(env, pos, target, 100)
	if pos != target {
		t.Fatalf("expected to arrive at %v, got %v", target, pos)
	}
	if r.Plans() != 1 {
		t.Fatalf("expected a single plan for a fixed target, got %d", r.Plans())
	}
}

func TestRouter_ReplansOnTargetChange(t *testing.T) {
	g := loadL(t)
	env := sim.NewContinuous2D()
	r := NewRouter(g)
	pos, _ := r.NextPosition(env, orb.Point{0, 0}, orb.Point{10, 10}, 5)
	pos, _ = r.NextPosition(env, pos, orb.Point{0, 0}, 100)
	if pos != (orb.Point{0, 0}) {
		t.Fatalf("expected to walk back to origin, got %v", pos)
	}
	if r.Plans() != 2 {
		t.Fatalf("expected a re-plan, got %d plans", r.Plans())
	}
}

func TestRouter_UnreachableWithMoveOnMap(t *testing.T) {
	g := loadL(t)
	env := sim.NewContinuous2D()
	n := sim.NewNode("walker")
	_ = env.AddNode(n, orb.Point{0, 0})
	n.SetConcentration(sim.MoleculeTarget, sim.Position(orb.Point{105, 100}))

	speed, _ := movement.NewConstantSpeed(constRate(1), 3)
	m := movement.NewMoveOnMap(env, n, NewRouter(g), speed, movement.NewFollowTarget(sim.MoleculeTarget))
	err := m.Execute()
	if !errors.Is(err, movement.ErrUnreachableTarget) {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if env.Position(n) != (orb.Point{0, 0}) {
		t.Fatalf("node must stay put, got %v", env.Position(n))
	}
}

type constRate float64

func (c constRate) Rate() float64 { return float64(c) }
