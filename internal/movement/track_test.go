package movement

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

func TestTrackNode_ChasesMovingNode(t *testing.T) {
	env := sim.NewContinuous2D()
	cam := sim.NewNode("cam")
	thief := sim.NewNode("thief")
	_ = env.AddNode(cam, orb.Point{})
	_ = env.AddNode(thief, orb.Point{10, 0})

	track := NewTrackNode(env, cam, thief, "chase")
	walk := NewMoveOnMap(env, cam, IgnoreStreets{}, fixedSpeed(2), NewFollowTarget("chase"))

	_ = track.Execute()
	_ = walk.Execute()
	env.MoveNodeToPosition(thief, orb.Point{10, 10})
	_ = track.Execute()

	v, _ := cam.Concentration("chase")
	if p, _ := v.AsPosition(); p != (orb.Point{10, 10}) {
		t.Fatalf("expected tracked position (10,10), got %v", v)
	}
	if p := env.Position(cam); p != (orb.Point{2, 0}) {
		t.Fatalf("expected camera at (2,0), got %v", p)
	}

	_ = env.RemoveNode(thief)
	_ = track.Execute()
	if cam.Contains("chase") {
		t.Fatal("expected molecule cleared once the followed node is gone")
	}
}

func TestPatrol_Cycles(t *testing.T) {
	env := sim.NewContinuous2D()
	n := sim.NewNode("guard")
	_ = env.AddNode(n, orb.Point{})
	wps := []orb.Point{{1, 0}, {1, 1}}
	p, err := NewPatrol(env, n, sim.MoleculeTarget, wps)
	if err != nil {
		t.Fatal(err)
	}
	walk := NewMoveOnMap(env, n, IgnoreStreets{}, fixedSpeed(5), NewFollowTarget(sim.MoleculeTarget))

	var visited []orb.Point
	for i := 0; i < 4; i++ {
		_ = p.Execute()
		_ = walk.Execute()
		visited = append(visited, env.Position(n))
	}
	want := []orb.Point{{1, 0}, {1, 1}, {1, 0}, {1, 1}}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("step %d: expected %v, got %v", i, want[i], visited[i])
		}
	}

	if _, err := NewPatrol(env, n, sim.MoleculeTarget, nil); err == nil {
		t.Fatal("expected empty patrol to fail")
	}
}
