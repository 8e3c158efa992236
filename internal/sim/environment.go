package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// ErrUnknownNode is returned when a node is not part of an environment.
var ErrUnknownNode = errors.New("node not in environment")

// Metric measures distances in an environment's coordinate space and steps
// along straight lines (or great circles) within it.
type Metric interface {
	Distance(a, b orb.Point) float64
	// Toward returns the point at distance along the line from -> to,
	// clamped to to.
	Toward(from, to orb.Point, distance float64) orb.Point
}

// Planar is the Euclidean metric.
type Planar struct{}

func (Planar) Distance(a, b orb.Point) float64 { return planar.Distance(a, b) }

func (Planar) Toward(from, to orb.Point, distance float64) orb.Point {
	total := planar.Distance(from, to)
	if distance <= 0 || total == 0 {
		return from
	}
	if distance >= total {
		return to
	}
	f := distance / total
	return orb.Point{from[0] + (to[0]-from[0])*f, from[1] + (to[1]-from[1])*f}
}

// Geodesic is the metric for lon/lat positions; distances are in meters.
type Geodesic struct{}

func (Geodesic) Distance(a, b orb.Point) float64 { return geo.Distance(a, b) }

func (Geodesic) Toward(from, to orb.Point, distance float64) orb.Point {
	total := geo.Distance(from, to)
	if distance <= 0 || total == 0 {
		return from
	}
	if distance >= total {
		return to
	}
	return geo.PointAtBearingAndDistance(from, geo.Bearing(from, to), distance)
}

// Environment owns node positions. Positions change only through
// MoveNodeToPosition and MoveNode.
type Environment interface {
	Nodes() []*Node
	Position(n *Node) orb.Point
	MoveNodeToPosition(n *Node, p orb.Point)
	// MoveNode displaces n by d in coordinate space.
	MoveNode(n *Node, d orb.Point)
	Metric() Metric
}

// PhysicsEnvironment is an environment whose nodes carry a heading.
type PhysicsEnvironment interface {
	Environment
	Heading(n *Node) orb.Point
	SetHeading(n *Node, h orb.Point)
}

// MovementTracker accumulates distance moved, split between camera nodes and
// other nodes.
type MovementTracker interface {
	CameraMovementsSinceLastQuery() float64
	ObjectMovementsSinceLastQuery() float64
}

// EnvOption configures an environment.
type EnvOption func(*space)

// WithCameraMolecule sets the molecule that marks camera nodes for movement
// tracking. Defaults to MoleculeVision.
func WithCameraMolecule(m Molecule) EnvOption {
	return func(s *space) { s.cameraMolecule = m }
}

// space is the position store shared by the environment implementations.
type space struct {
	metric         Metric
	nodes          []*Node
	positions      map[*Node]orb.Point
	cameraMolecule Molecule
	cameraDist     float64
	objectDist     float64
}

func newSpace(m Metric, opts []EnvOption) space {
	s := space{
		metric:         m,
		positions:      make(map[*Node]orb.Point),
		cameraMolecule: MoleculeVision,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// AddNode places n at p.
func (s *space) AddNode(n *Node, p orb.Point) error {
	if _, ok := s.positions[n]; ok {
		return fmt.Errorf("add node %s: already present", n.Label())
	}
	s.nodes = append(s.nodes, n)
	s.positions[n] = p
	return nil
}

// RemoveNode drops n.
func (s *space) RemoveNode(n *Node) error {
	if _, ok := s.positions[n]; !ok {
		return fmt.Errorf("remove node %s: %w", n.Label(), ErrUnknownNode)
	}
	delete(s.positions, n)
	for i, c := range s.nodes {
		if c == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	return nil
}

// Nodes returns the nodes in insertion order.
func (s *space) Nodes() []*Node { return s.nodes }

// Has reports whether n is in the environment.
func (s *space) Has(n *Node) bool {
	_, ok := s.positions[n]
	return ok
}

func (s *space) Position(n *Node) orb.Point { return s.positions[n] }

func (s *space) Metric() Metric { return s.metric }

func (s *space) MoveNodeToPosition(n *Node, p orb.Point) {
	last, ok := s.positions[n]
	if !ok || math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return
	}
	s.positions[n] = p
	d := s.metric.Distance(last, p)
	if n.Contains(s.cameraMolecule) {
		s.cameraDist += d
	} else {
		s.objectDist += d
	}
}

func (s *space) MoveNode(n *Node, d orb.Point) {
	p := s.positions[n]
	s.MoveNodeToPosition(n, orb.Point{p[0] + d[0], p[1] + d[1]})
}

func (s *space) CameraMovementsSinceLastQuery() float64 {
	d := s.cameraDist
	s.cameraDist = 0
	return d
}

func (s *space) ObjectMovementsSinceLastQuery() float64 {
	d := s.objectDist
	s.objectDist = 0
	return d
}

// Continuous2D is a Euclidean physics environment with headings.
type Continuous2D struct {
	space
	headings map[*Node]orb.Point
}

// NewContinuous2D returns an empty Euclidean environment.
func NewContinuous2D(opts ...EnvOption) *Continuous2D {
	return &Continuous2D{
		space:    newSpace(Planar{}, opts),
		headings: make(map[*Node]orb.Point),
	}
}

// Heading returns the unit heading of n; nodes start facing +x.
func (e *Continuous2D) Heading(n *Node) orb.Point {
	if h, ok := e.headings[n]; ok {
		return h
	}
	return orb.Point{1, 0}
}

// SetHeading stores h normalised. A zero vector is ignored.
func (e *Continuous2D) SetHeading(n *Node, h orb.Point) {
	l := math.Hypot(h[0], h[1])
	if l == 0 || math.IsNaN(l) {
		return
	}
	e.headings[n] = orb.Point{h[0] / l, h[1] / l}
}

// MapEnvironment is a geographic environment: positions are lon/lat and
// distances are meters. It has no notion of heading.
type MapEnvironment struct {
	space
}

// NewMapEnvironment returns an empty geographic environment.
func NewMapEnvironment(opts ...EnvOption) *MapEnvironment {
	return &MapEnvironment{space: newSpace(Geodesic{}, opts)}
}

// HeadingAngle returns the heading of h in radians.
func HeadingAngle(h orb.Point) float64 {
	return math.Atan2(h[1], h[0])
}
