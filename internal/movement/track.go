package movement

import (
	"errors"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

// TrackNode copies another node's current position into a molecule, so a
// MoveOnMap reading that molecule chases it.
type TrackNode struct {
	env      sim.Environment
	node     *sim.Node
	followed *sim.Node
	molecule sim.Molecule
}

func NewTrackNode(env sim.Environment, n, followed *sim.Node, molecule sim.Molecule) *TrackNode {
	return &TrackNode{env: env, node: n, followed: followed, molecule: molecule}
}

// Execute implements sim.Action. A followed node that left the environment
// clears the molecule.
func (t *TrackNode) Execute() error {
	if h, ok := t.env.(interface{ Has(*sim.Node) bool }); ok && !h.Has(t.followed) {
		t.node.RemoveConcentration(t.molecule)
		return nil
	}
	t.node.SetConcentration(t.molecule, sim.Position(t.env.Position(t.followed)))
	return nil
}

// Patrol cycles a node's destination molecule through waypoints, advancing
// whenever the node stands on the current one.
type Patrol struct {
	env       sim.Environment
	node      *sim.Node
	molecule  sim.Molecule
	waypoints []orb.Point
	current   int
}

// NewPatrol sets the first waypoint immediately.
func NewPatrol(env sim.Environment, n *sim.Node, molecule sim.Molecule, waypoints []orb.Point) (*Patrol, error) {
	if len(waypoints) == 0 {
		return nil, errors.New("patrol: no waypoints")
	}
	p := &Patrol{env: env, node: n, molecule: molecule, waypoints: waypoints}
	n.SetConcentration(molecule, sim.Position(waypoints[0]))
	return p, nil
}

// Current returns the index of the active waypoint.
func (p *Patrol) Current() int { return p.current }

func (p *Patrol) Execute() error {
	if p.env.Metric().Distance(p.env.Position(p.node), p.waypoints[p.current]) <= arriveEps {
		p.current = (p.current + 1) % len(p.waypoints)
	}
	p.node.SetConcentration(p.molecule, sim.Position(p.waypoints[p.current]))
	return nil
}
