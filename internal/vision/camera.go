package vision

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

// CameraSee is the perception action. Each execution writes the nodes the
// camera detects into its output molecule as a Visible value.
type CameraSee struct {
	env    sim.PhysicsEnvironment
	node   *sim.Node
	spec   Spec
	angle  float64
	output sim.Molecule
	filter sim.Molecule
	log    *sim.SimLog

	seen []*sim.Node
}

// CameraOption configures a CameraSee.
type CameraOption func(*CameraSee)

// WithOutput sets the molecule detections are written to.
func WithOutput(m sim.Molecule) CameraOption {
	return func(c *CameraSee) { c.output = m }
}

// WithFilter keeps only detected nodes carrying m.
func WithFilter(m sim.Molecule) CameraOption {
	return func(c *CameraSee) { c.filter = m }
}

// WithSimLog records each execution's detections in l while it is verbose.
func WithSimLog(l *sim.SimLog) CameraOption {
	return func(c *CameraSee) { c.log = l }
}

// NewCameraSee builds the action for node. angle is the aperture in degrees.
// The output molecule is initialised to an empty detection list.
func NewCameraSee(env sim.PhysicsEnvironment, node *sim.Node, blindSpot, distance, angle float64, opts ...CameraOption) (*CameraSee, error) {
	spec, err := NewSpecDegrees(angle, distance, blindSpot)
	if err != nil {
		return nil, fmt.Errorf("camera %s: %w", node.Label(), err)
	}
	c := &CameraSee{
		env:    env,
		node:   node,
		spec:   spec,
		angle:  angle,
		output: sim.MoleculeVision,
	}
	for _, o := range opts {
		o(c)
	}
	node.SetConcentration(c.output, sim.Visible(nil))
	return c, nil
}

// Node returns the camera node.
func (c *CameraSee) Node() *sim.Node { return c.node }

// Spec returns the validated field of view.
func (c *CameraSee) Spec() Spec { return c.spec }

// Angle returns the aperture in degrees, as given to NewCameraSee.
func (c *CameraSee) Angle() float64 { return c.angle }

// Distance returns the view distance.
func (c *CameraSee) Distance() float64 { return c.spec.distance }

// BlindSpotDistance returns the radius of the blind spot.
func (c *CameraSee) BlindSpotDistance() float64 { return c.spec.blindSpot }

// Output returns the molecule detections are written to.
func (c *CameraSee) Output() sim.Molecule { return c.output }

// SeenTargets returns the nodes detected by the last execution.
func (c *CameraSee) SeenTargets() []*sim.Node { return c.seen }

func (c *CameraSee) detector() (*Detector, error) {
	return NewDetector(c.spec, WorldView{}, c.env.Position(c.node), c.env.Heading(c.node))
}

// IsVisible reports whether a camera in its current pose detects p.
func (c *CameraSee) IsVisible(p orb.Point) bool {
	d, err := c.detector()
	if err != nil {
		return false
	}
	return d.Detects(p)
}

// Execute implements sim.Action.
func (c *CameraSee) Execute() error {
	d, err := c.detector()
	if err != nil {
		return fmt.Errorf("camera %s: %w", c.node.Label(), err)
	}
	var seen []*sim.Node
	var visible []sim.VisibleNode
	for _, n := range c.env.Nodes() {
		if n == c.node {
			continue
		}
		if c.filter != "" && !n.Contains(c.filter) {
			continue
		}
		p := c.env.Position(n)
		if !d.Detects(p) {
			continue
		}
		seen = append(seen, n)
		visible = append(visible, sim.VisibleNode{Node: n, Position: p})
	}
	c.seen = seen
	c.node.SetConcentration(c.output, sim.Visible(visible))
	if c.log.Verbose() {
		labels := make([]string, len(seen))
		for i, n := range seen {
			labels[i] = n.Label()
		}
		c.log.AddVerbose(c.node.Label(), "vision", "detect", strings.Join(labels, ","), float64(len(seen)))
	}
	return nil
}
