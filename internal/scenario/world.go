// Package scenario assembles a runnable simulation from a configuration or
// from builder options.
package scenario

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/config"
	"github.com/Garsondee/smartcam/internal/extract"
	"github.com/Garsondee/smartcam/internal/geom"
	"github.com/Garsondee/smartcam/internal/movement"
	"github.com/Garsondee/smartcam/internal/roads"
	"github.com/Garsondee/smartcam/internal/sim"
	"github.com/Garsondee/smartcam/internal/vision"
)

// MoleculeDestination holds where a node is walking to. The target molecule
// is kept as the coverage flag.
const MoleculeDestination sim.Molecule = "destination"

// World is a built scenario: environment, engine and the pieces reports need.
type World struct {
	Name   string
	Env    sim.Environment
	Engine *sim.Engine
	Roads  *roads.Graph

	Cameras    []*vision.CameraSee
	Extractors []extract.Extractor

	Until       float64
	SampleEvery float64

	logger *slog.Logger
	nodes  map[string]*sim.Node
}

// Node returns the node with the given label, or nil.
func (w *World) Node(label string) *sim.Node { return w.nodes[label] }

// Labels returns every node label in creation order.
func (w *World) Labels() []string {
	out := make([]string, 0, len(w.nodes))
	for _, n := range w.Env.Nodes() {
		out = append(out, n.Label())
	}
	return out
}

func newWorld(name string, env sim.Environment, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		Name:        name,
		Env:         env,
		Engine:      sim.NewEngine(env, logger),
		Until:       60,
		SampleEvery: 1,
		logger:      logger,
		nodes:       make(map[string]*sim.Node),
	}
}

type adder interface {
	AddNode(*sim.Node, orb.Point) error
}

func (w *World) addNode(label string, pos orb.Point, shape geom.Shape) (*sim.Node, error) {
	if _, dup := w.nodes[label]; dup {
		return nil, fmt.Errorf("node %q already exists", label)
	}
	n := sim.NewNode(label)
	n.SetShape(shape)
	if err := w.Env.(adder).AddNode(n, pos); err != nil {
		return nil, err
	}
	w.nodes[label] = n
	return n, nil
}

func (w *World) routing(kind string) (movement.RoutingPolicy, error) {
	if kind != config.RoutingRoads {
		return movement.IgnoreStreets{}, nil
	}
	if w.Roads == nil {
		return nil, fmt.Errorf("roads routing without a road network")
	}
	return roads.NewRouter(w.Roads), nil
}

// walker builds the movement action of n: toward MoleculeDestination at
// speed, refreshed every 1/rate.
func (w *World) walker(n *sim.Node, r *sim.Reaction, speed float64, routingKind string) (*movement.MoveOnMap, error) {
	routing, err := w.routing(routingKind)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Label(), err)
	}
	sp, err := movement.NewConstantSpeed(r, speed)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.Label(), err)
	}
	return movement.NewMoveOnMap(w.Env, n, routing, sp, movement.NewFollowTarget(MoleculeDestination),
		movement.WithFaceTravel(), movement.WithLogger(w.logger), movement.WithSimLog(w.Engine.Log)), nil
}

// FromConfig builds a world from a scenario, filling defaults and validating
// it first. Relative road paths resolve against baseDir.
func FromConfig(s *config.Scenario, baseDir string, logger *slog.Logger) (*World, error) {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var graph *roads.Graph
	if s.Environment.Roads != "" {
		path := s.Environment.Roads
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read roads: %w", err)
		}
		g, err := roads.LoadGeoJSON(data, metricFor(s.Environment.Kind))
		if err != nil {
			return nil, err
		}
		graph = g
	}
	return build(s, graph, logger)
}

func metricFor(kind string) sim.Metric {
	if kind == config.EnvMap {
		return sim.Geodesic{}
	}
	return sim.Planar{}
}

func build(s *config.Scenario, graph *roads.Graph, logger *slog.Logger) (*World, error) {
	var env sim.Environment
	switch s.Environment.Kind {
	case config.EnvMap:
		env = sim.NewMapEnvironment()
	default:
		env = sim.NewContinuous2D()
	}
	w := newWorld(s.Name, env, logger)
	w.Until = s.Run.Until
	w.SampleEvery = s.Run.SampleEvery
	w.Roads = graph

	for _, t := range s.Targets {
		if err := w.addTarget(t); err != nil {
			return nil, err
		}
	}
	rng := rand.New(rand.NewSource(s.Run.Seed))
	for _, c := range s.Cameras {
		if err := w.addCamera(c, rng); err != nil {
			return nil, err
		}
	}
	for _, c := range s.Cameras {
		if c.Follow == "" {
			continue
		}
		if err := w.follow(c); err != nil {
			return nil, err
		}
	}

	cov, err := extract.NewCamerasKCoverage(sim.MoleculeVision, sim.MoleculeTarget, s.Run.CoverageK)
	if err != nil {
		return nil, err
	}
	w.Extractors = []extract.Extractor{extract.DistanceTraveled{}, cov}

	for _, n := range env.Nodes() {
		if err := w.Engine.ScheduleNode(n); err != nil {
			return nil, err
		}
	}
	w.logger.Info("scenario built", "name", w.Name, "nodes", len(env.Nodes()), "cameras", len(w.Cameras))
	return w, nil
}

func (w *World) addTarget(t config.Target) error {
	shape, err := geom.EggShapedEllipse(t.Shape.Radius, t.Shape.Ratio)
	if err != nil {
		return fmt.Errorf("target %s: %w", t.Label, err)
	}
	n, err := w.addNode(t.Label, orb.Point(t.Position), shape)
	if err != nil {
		return err
	}
	n.SetConcentration(sim.MoleculeTarget, sim.Bool(true))
	if t.Wanted {
		n.SetConcentration(sim.MoleculeWanted, sim.Bool(true))
	}

	r := sim.NewReaction(n, *t.Rate)
	switch {
	case len(t.Waypoints) > 0:
		wps := make([]orb.Point, len(t.Waypoints))
		for i, p := range t.Waypoints {
			wps[i] = orb.Point(p)
		}
		patrol, err := movement.NewPatrol(w.Env, n, MoleculeDestination, wps)
		if err != nil {
			return fmt.Errorf("target %s: %w", t.Label, err)
		}
		r.AddAction(patrol)
	case t.Goal != "":
		n.SetConcentration(MoleculeDestination, sim.Text(t.Goal))
	default:
		return nil
	}
	walk, err := w.walker(n, r, *t.Speed, t.Routing)
	if err != nil {
		return err
	}
	r.AddAction(walk)
	return nil
}

// addCamera draws the heading from rng when the camera has none, one draw per
// such camera in file order.
func (w *World) addCamera(c config.Camera, rng *rand.Rand) error {
	penv, ok := w.Env.(sim.PhysicsEnvironment)
	if !ok {
		return fmt.Errorf("camera %s: %w", c.Label, vision.ErrIncompatibleEnvironment)
	}
	shape, err := geom.EggShapedEllipse(c.Shape.Radius, c.Shape.Ratio)
	if err != nil {
		return fmt.Errorf("camera %s: %w", c.Label, err)
	}
	n, err := w.addNode(c.Label, orb.Point(c.Position), shape)
	if err != nil {
		return err
	}
	angle := rng.Float64() * 2 * math.Pi
	if c.Heading != nil {
		angle = *c.Heading * math.Pi / 180
	}
	movement.NewInitHeading(penv, n, nil, angle)

	r := sim.NewReaction(n, *c.Rate)

	see, err := vision.NewCameraSee(penv, n, c.FOV.BlindSpot, c.FOV.Distance, c.FOV.Angle,
		vision.WithSimLog(w.Engine.Log))
	if err != nil {
		return err
	}
	r.AddAction(see)
	w.Cameras = append(w.Cameras, see)
	return nil
}

// follow makes camera c chase the node it names. Tracking and moving run
// before perception within the camera's reaction.
func (w *World) follow(c config.Camera) error {
	cam, tgt := w.nodes[c.Label], w.nodes[c.Follow]
	if cam == nil || tgt == nil {
		return fmt.Errorf("follow %s -> %s: unknown node", c.Label, c.Follow)
	}
	r := cam.Reactions()[0]
	walk, err := w.walker(cam, r, *c.Speed, c.Routing)
	if err != nil {
		return err
	}
	r.PrependAction(movement.NewTrackNode(w.Env, cam, tgt, MoleculeDestination), walk)
	return nil
}
