package vision

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/geom"
	"github.com/Garsondee/smartcam/internal/sim"
)

// Cone is one placed field of view, ready to draw.
type Cone struct {
	FOV       orb.Ring       // stroked
	BlindSpot orb.Ring       // filled
	Boundary  orb.LineString // stroked, open
}

// Overlay is everything drawn for one node, already in view coordinates.
type Overlay struct {
	Node    *sim.Node
	Marker  Marker
	Outline orb.Ring // nil when the node has no shape
	Cones   []Cone
}

// BuildOverlay places the node's occupancy shape and the field of view of
// every CameraSee it runs.
//
// Environments without headings yield ErrIncompatibleEnvironment and no
// overlay. A node without a shape yields geom.ErrIncompatibleShape together
// with an overlay that still carries its cones.
func BuildOverlay(n *sim.Node, env sim.Environment, view View) (Overlay, error) {
	penv, ok := env.(sim.PhysicsEnvironment)
	if !ok {
		return Overlay{}, ErrIncompatibleEnvironment
	}
	pose := Pose(view, penv.Position(n), penv.Heading(n))
	if err := pose.Validate(); err != nil {
		return Overlay{}, fmt.Errorf("overlay %s: %w", n.Label(), err)
	}

	ov := Overlay{Node: n, Marker: Classify(n)}
	for _, a := range n.Actions() {
		cam, ok := a.(*CameraSee)
		if !ok {
			continue
		}
		placed, err := cam.Spec().Regions().Transformed(pose)
		if err != nil {
			return Overlay{}, fmt.Errorf("overlay %s: %w", n.Label(), err)
		}
		ov.Cones = append(ov.Cones, Cone{
			FOV:       placed.FOV.Ring(),
			BlindSpot: placed.BlindSpot.Ring(),
			Boundary:  placed.BlindSpotBoundary,
		})
	}

	shape := n.Shape()
	if shape == nil {
		return ov, fmt.Errorf("overlay %s: %w: node has no shape", n.Label(), geom.ErrIncompatibleShape)
	}
	placed, err := pose.ApplyShape(shape)
	if err != nil {
		return ov, fmt.Errorf("overlay %s: %w", n.Label(), err)
	}
	ov.Outline = placed.Ring()
	return ov, nil
}
