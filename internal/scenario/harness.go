package scenario

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/config"
	"github.com/Garsondee/smartcam/internal/roads"
)

// inlineRoads marks a road network handed over as a graph rather than a file.
const inlineRoads = "<inline>"

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra    optionKind = iota // environment, roads, run, logging: applied first
	optNode                       // add cameras and targets
	optModifier                   // adjust nodes that already exist
)

// Option is a builder function applied while assembling a world in code.
type Option struct {
	kind optionKind
	fn   func(*builder)
}

type builder struct {
	cfg     config.Scenario
	graph   *roads.Graph
	logger  *slog.Logger
	verbose bool
}

func (b *builder) camera(label string) *config.Camera {
	for i := range b.cfg.Cameras {
		if b.cfg.Cameras[i].Label == label {
			return &b.cfg.Cameras[i]
		}
	}
	return nil
}

func (b *builder) target(label string) *config.Target {
	for i := range b.cfg.Targets {
		if b.cfg.Targets[i].Label == label {
			return &b.cfg.Targets[i]
		}
	}
	return nil
}

// WithName names the world.
func WithName(name string) Option {
	return Option{optInfra, func(b *builder) { b.cfg.Name = name }}
}

// WithMap switches to a geographic environment.
func WithMap() Option {
	return Option{optInfra, func(b *builder) { b.cfg.Environment.Kind = config.EnvMap }}
}

// WithRoads routes "roads" nodes over g.
func WithRoads(g *roads.Graph) Option {
	return Option{optInfra, func(b *builder) {
		b.graph = g
		b.cfg.Environment.Roads = inlineRoads
	}}
}

// WithRun sets the run length and sampling interval.
func WithRun(until, sampleEvery float64) Option {
	return Option{optInfra, func(b *builder) {
		b.cfg.Run.Until = until
		b.cfg.Run.SampleEvery = sampleEvery
	}}
}

// WithSeed seeds the headings of cameras added without one.
func WithSeed(seed int64) Option {
	return Option{optInfra, func(b *builder) { b.cfg.Run.Seed = seed }}
}

// WithCoverageK sets how many coverage levels are reported.
func WithCoverageK(k int) Option {
	return Option{optInfra, func(b *builder) { b.cfg.Run.CoverageK = k }}
}

// WithLogger sets the logger of every component.
func WithLogger(l *slog.Logger) Option {
	return Option{optInfra, func(b *builder) { b.logger = l }}
}

// WithVerbose records per-activation movement and detection entries in the
// engine's SimLog.
func WithVerbose(v bool) Option {
	return Option{optInfra, func(b *builder) { b.verbose = v }}
}

// WithCamera adds a camera at p facing heading (degrees).
func WithCamera(label string, p orb.Point, heading float64, fov config.FOV) Option {
	return Option{optNode, func(b *builder) {
		b.cfg.Cameras = append(b.cfg.Cameras, config.Camera{
			Label: label, Position: [2]float64(p), Heading: config.Float(heading), FOV: fov,
		})
	}}
}

// WithRandomHeading adds a camera at p whose heading comes from the seed.
func WithRandomHeading(label string, p orb.Point, fov config.FOV) Option {
	return Option{optNode, func(b *builder) {
		b.cfg.Cameras = append(b.cfg.Cameras, config.Camera{Label: label, Position: [2]float64(p), FOV: fov})
	}}
}

// WithTarget adds a stationary target at p.
func WithTarget(label string, p orb.Point) Option {
	return Option{optNode, func(b *builder) {
		b.cfg.Targets = append(b.cfg.Targets, config.Target{Label: label, Position: [2]float64(p)})
	}}
}

// WithGoal makes a target walk toward goal, written as text.
func WithGoal(label, goal string) Option {
	return Option{optModifier, func(b *builder) {
		if t := b.target(label); t != nil {
			t.Goal = goal
		}
	}}
}

// WithWaypoints makes a target patrol pts.
func WithWaypoints(label string, pts ...orb.Point) Option {
	return Option{optModifier, func(b *builder) {
		if t := b.target(label); t != nil {
			for _, p := range pts {
				t.Waypoints = append(t.Waypoints, [2]float64(p))
			}
		}
	}}
}

// WithWanted flags a target as wanted.
func WithWanted(label string) Option {
	return Option{optModifier, func(b *builder) {
		if t := b.target(label); t != nil {
			t.Wanted = true
		}
	}}
}

// WithFollow makes a camera chase another node.
func WithFollow(camera, followed string) Option {
	return Option{optModifier, func(b *builder) {
		if c := b.camera(camera); c != nil {
			c.Follow = followed
		}
	}}
}

// WithSpeed sets the speed and rate of a camera or target.
func WithSpeed(label string, speed, rate float64) Option {
	return Option{optModifier, func(b *builder) {
		if c := b.camera(label); c != nil {
			c.Speed, c.Rate = config.Float(speed), config.Float(rate)
		}
		if t := b.target(label); t != nil {
			t.Speed, t.Rate = config.Float(speed), config.Float(rate)
		}
	}}
}

// WithRouting sets the routing of a camera or target.
func WithRouting(label, routing string) Option {
	return Option{optModifier, func(b *builder) {
		if c := b.camera(label); c != nil {
			c.Routing = routing
		}
		if t := b.target(label); t != nil {
			t.Routing = routing
		}
	}}
}

// New builds a world from options in three ordered passes: infrastructure,
// nodes, then node modifiers. The result is validated like a loaded file.
func New(opts ...Option) (*World, error) {
	b := &builder{}
	for _, kind := range []optionKind{optInfra, optNode, optModifier} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(b)
			}
		}
	}
	b.cfg.ApplyDefaults()
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	w, err := build(&b.cfg, b.graph, b.logger)
	if err != nil {
		return nil, err
	}
	w.Engine.Log.SetVerbose(b.verbose)
	return w, nil
}
