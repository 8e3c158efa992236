package movement

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

// arriveEps is the distance under which a node counts as on its target.
const arriveEps = 1e-9

// Outcome describes what the last activation did.
type Outcome int

const (
	OutcomeNone       Outcome = iota // never executed
	OutcomeNoTarget                  // target unresolved, skipped
	OutcomeIdle                      // zero travel distance this activation
	OutcomeMoved                     // advanced toward the target
	OutcomeArrived                   // standing on the target
	OutcomeNoProgress                // routing failed; retried next activation
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeNoTarget:
		return "no_target"
	case OutcomeIdle:
		return "idle"
	case OutcomeMoved:
		return "moved"
	case OutcomeArrived:
		return "arrived"
	case OutcomeNoProgress:
		return "no_progress"
	default:
		return "unknown"
	}
}

// MoveOnMap is the movement action. Each Execute resolves the target afresh,
// asks the speed policy for a distance, asks the routing policy for the next
// position and applies it through the environment.
type MoveOnMap struct {
	env     sim.Environment
	node    *sim.Node
	routing RoutingPolicy
	speed   SpeedPolicy
	target  TargetResolver

	faceTravel bool
	warn       *sim.OnceLogger
	log        *sim.SimLog
	outcome    Outcome
}

// MoveOption configures a MoveOnMap.
type MoveOption func(*MoveOnMap)

// WithFaceTravel turns the node toward its direction of travel on
// environments that keep headings.
func WithFaceTravel() MoveOption {
	return func(m *MoveOnMap) { m.faceTravel = true }
}

// WithLogger sets the logger used for the one-off unresolved-target warning.
func WithLogger(l *slog.Logger) MoveOption {
	return func(m *MoveOnMap) { m.warn = sim.NewOnceLogger(l) }
}

// WithSimLog records the outcome of every activation in l. Entries only
// appear while l is verbose.
func WithSimLog(l *sim.SimLog) MoveOption {
	return func(m *MoveOnMap) { m.log = l }
}

// NewMoveOnMap wires the three policies for node n.
func NewMoveOnMap(env sim.Environment, n *sim.Node, routing RoutingPolicy, speed SpeedPolicy, target TargetResolver, opts ...MoveOption) *MoveOnMap {
	m := &MoveOnMap{
		env:     env,
		node:    n,
		routing: routing,
		speed:   speed,
		target:  target,
	}
	for _, o := range opts {
		o(m)
	}
	if m.warn == nil {
		m.warn = sim.NewOnceLogger(nil)
	}
	return m
}

// NewTargetMapWalker walks n in a straight line toward the position read from
// molecule, at DefaultSpeed.
func NewTargetMapWalker(env sim.Environment, n *sim.Node, reaction RateSource, molecule sim.Molecule, opts ...MoveOption) *MoveOnMap {
	speed, _ := NewConstantSpeed(reaction, DefaultSpeed)
	return NewMoveOnMap(env, n, IgnoreStreets{}, speed, NewFollowTarget(molecule), opts...)
}

// Node returns the moving node.
func (m *MoveOnMap) Node() *sim.Node { return m.node }

// Outcome returns what the most recent Execute did.
func (m *MoveOnMap) Outcome() Outcome { return m.outcome }

// Execute implements sim.Action. Unresolved targets are not errors; an
// unreachable target returns an error wrapping ErrUnreachableTarget.
func (m *MoveOnMap) Execute() error {
	target, ok := m.target.Resolve(m.node)
	if !ok {
		m.record(OutcomeNoTarget, "", 0)
		m.warn.Warn("target unresolved, node not moving", "node", m.node.Label())
		return nil
	}

	from := m.env.Position(m.node)
	metric := m.env.Metric()
	if metric.Distance(from, target) <= arriveEps {
		m.record(OutcomeArrived, pointText(target), 0)
		return nil
	}

	dist := m.speed.NodeMovementLength(m.node, target)
	if !(dist > 0) || math.IsInf(dist, 0) {
		m.record(OutcomeIdle, pointText(target), 0)
		return nil
	}

	next, err := m.routing.NextPosition(m.env, from, target, dist)
	if err != nil {
		m.record(OutcomeNoProgress, err.Error(), 0)
		return fmt.Errorf("move %s: %w", m.node.Label(), err)
	}

	m.env.MoveNodeToPosition(m.node, next)
	if m.faceTravel {
		if penv, ok := m.env.(sim.PhysicsEnvironment); ok {
			penv.SetHeading(m.node, orb.Point{next[0] - from[0], next[1] - from[1]})
		}
	}

	travelled := metric.Distance(from, next)
	if metric.Distance(next, target) <= arriveEps {
		m.record(OutcomeArrived, pointText(next), travelled)
	} else {
		m.record(OutcomeMoved, pointText(next), travelled)
	}
	return nil
}

func (m *MoveOnMap) record(o Outcome, value string, dist float64) {
	m.outcome = o
	m.log.AddVerbose(m.node.Label(), "move", o.String(), value, dist)
}

func pointText(p orb.Point) string {
	return fmt.Sprintf("(%.3f, %.3f)", p[0], p[1])
}

// InitHeading sets a node's heading once and then removes itself from its
// reaction.
type InitHeading struct {
	env      sim.PhysicsEnvironment
	node     *sim.Node
	reaction *sim.Reaction
	angle    float64
}

// NewInitHeading applies the heading immediately, so the node faces angle
// (radians) before its first activation.
func NewInitHeading(env sim.PhysicsEnvironment, n *sim.Node, reaction *sim.Reaction, angle float64) *InitHeading {
	h := &InitHeading{env: env, node: n, reaction: reaction, angle: angle}
	_ = h.Execute()
	return h
}

// Execute implements sim.Action.
func (h *InitHeading) Execute() error {
	if h.reaction != nil {
		h.reaction.RemoveAction(h)
	}
	sin, cos := math.Sincos(h.angle)
	h.env.SetHeading(h.node, orb.Point{cos, sin})
	return nil
}
