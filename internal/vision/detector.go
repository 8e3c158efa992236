package vision

import (
	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/geom"
	"github.com/Garsondee/smartcam/internal/sim"
)

// View maps world positions to the drawing surface. The renderer's viewport
// and WorldView both satisfy it.
type View interface {
	ViewPoint(p orb.Point) orb.Point
	Zoom() float64
}

// WorldView is the unit view: world coordinates with the y axis flipped, as
// on a y-down surface.
type WorldView struct{}

func (WorldView) ViewPoint(p orb.Point) orb.Point { return orb.Point{p[0], -p[1]} }
func (WorldView) Zoom() float64                   { return 1 }

// Pose returns the transform that places local geometry of a node standing
// at pos and facing heading.
func Pose(view View, pos, heading orb.Point) geom.Transform {
	anchor := view.ViewPoint(pos)
	return geom.Build(anchor[0], anchor[1], view.Zoom(), sim.HeadingAngle(heading))
}

// Detector answers containment questions for one camera pose.
type Detector struct {
	view    View
	regions Regions
}

// NewDetector places spec at the given pose. It fails if the view's zoom is
// degenerate.
func NewDetector(spec Spec, view View, pos, heading orb.Point) (*Detector, error) {
	placed, err := spec.Regions().Transformed(Pose(view, pos, heading))
	if err != nil {
		return nil, err
	}
	return &Detector{view: view, regions: placed}, nil
}

// Regions returns the placed regions.
func (d *Detector) Regions() Regions { return d.regions }

func (d *Detector) InFOV(p orb.Point) bool {
	return d.regions.FOV.Contains(d.view.ViewPoint(p))
}

func (d *Detector) InBlindSpot(p orb.Point) bool {
	return d.regions.BlindSpot.Contains(d.view.ViewPoint(p))
}

// Detects reports whether p is inside the field of view and outside the
// blind spot.
func (d *Detector) Detects(p orb.Point) bool {
	return d.InFOV(p) && !d.InBlindSpot(p)
}

// Marker flags how an observed node is drawn.
type Marker int

const (
	MarkerNormal Marker = iota
	MarkerWanted
)

func (m Marker) String() string {
	if m == MarkerWanted {
		return "wanted"
	}
	return "normal"
}

// Classify returns MarkerWanted for nodes carrying the wanted molecule,
// whatever its value.
func Classify(n *sim.Node) Marker {
	if n.Contains(sim.MoleculeWanted) {
		return MarkerWanted
	}
	return MarkerNormal
}
