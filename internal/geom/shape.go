package geom

import (
	"math"

	"github.com/paulmach/orb"
)

// Number of straight segments used to approximate a full turn when a curved
// shape is turned into a ring. Multiple of 4 so axis extremes are vertices.
const curveSegments = 64

// containEps absorbs rounding on boundary tests.
const containEps = 1e-9

// Shape is an immutable closed 2D region.
type Shape interface {
	// Contains reports whether p lies inside or on the boundary.
	Contains(p orb.Point) bool
	// Bound returns the axis-aligned bounding box.
	Bound() orb.Bound
	// Ring returns a closed polygonal outline, first vertex repeated last.
	Ring() orb.Ring
	// Area returns the enclosed area.
	Area() float64
}

// Ellipse is an axis-aligned ellipse centred at the local origin.
type Ellipse struct {
	rx, ry float64
}

// SemiAxes returns the horizontal and vertical semi-axes.
func (e *Ellipse) SemiAxes() (rx, ry float64) { return e.rx, e.ry }

func (e *Ellipse) Contains(p orb.Point) bool {
	nx := p[0] / e.rx
	ny := p[1] / e.ry
	return nx*nx+ny*ny <= 1+containEps
}

func (e *Ellipse) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{-e.rx, -e.ry}, Max: orb.Point{e.rx, e.ry}}
}

func (e *Ellipse) Ring() orb.Ring {
	ring := make(orb.Ring, 0, curveSegments+1)
	for i := 0; i < curveSegments; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / curveSegments)
		ring = append(ring, orb.Point{e.rx * cos, e.ry * sin})
	}
	return append(ring, ring[0])
}

func (e *Ellipse) Area() float64 { return math.Pi * e.rx * e.ry }

// Sector is a filled circular pie slice centred at the local origin. Angles
// follow the screen convention: the boundary point at angle a is
// (r*cos a, -r*sin a), so positive angles open upward once drawn on a y-down
// surface. A zero radius is the empty sector.
type Sector struct {
	radius float64
	start  float64
	sweep  float64
}

// Radius returns the sector radius.
func (s *Sector) Radius() float64 { return s.radius }

// Span returns the start angle and sweep in radians.
func (s *Sector) Span() (start, sweep float64) { return s.start, s.sweep }

// Empty reports whether the sector has no interior.
func (s *Sector) Empty() bool { return s.radius == 0 || s.sweep == 0 }

func (s *Sector) Contains(p orb.Point) bool {
	if s.Empty() {
		return false
	}
	dist := math.Hypot(p[0], p[1])
	if dist > s.radius+containEps {
		return false
	}
	if s.sweep >= 2*math.Pi || dist < containEps {
		return true
	}
	rel := math.Mod(math.Atan2(-p[1], p[0])-s.start, 2*math.Pi)
	if rel < 0 {
		rel += 2 * math.Pi
	}
	return rel <= s.sweep+containEps || rel >= 2*math.Pi-containEps
}

func (s *Sector) Bound() orb.Bound {
	return s.Ring().Bound()
}

func (s *Sector) Ring() orb.Ring {
	if s.Empty() {
		return orb.Ring{{0, 0}, {0, 0}}
	}
	arc := arcPoints(s.radius, s.start, s.sweep)
	ring := make(orb.Ring, 0, len(arc)+2)
	if s.sweep < 2*math.Pi {
		ring = append(ring, orb.Point{0, 0})
	}
	ring = append(ring, arc...)
	return append(ring, ring[0])
}

func (s *Sector) Area() float64 {
	return 0.5 * math.Min(s.sweep, 2*math.Pi) * s.radius * s.radius
}

// Arc is an open circular arc centred at the local origin, using the same
// angle convention as Sector.
type Arc struct {
	radius float64
	start  float64
	sweep  float64
}

// NewArc returns an open arc. Radius may be zero, in which case Path is a
// single point.
func NewArc(radius, start, sweep float64) Arc {
	return Arc{radius: radius, start: start, sweep: sweep}
}

// Path returns the arc as a polyline.
func (a Arc) Path() orb.LineString {
	return orb.LineString(arcPoints(a.radius, a.start, a.sweep))
}

func arcPoints(radius, start, sweep float64) []orb.Point {
	steps := int(math.Ceil(math.Abs(sweep) / (2 * math.Pi) * curveSegments))
	if steps < 1 {
		steps = 1
	}
	pts := make([]orb.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := start + sweep*float64(i)/float64(steps)
		sin, cos := math.Sincos(a)
		pts = append(pts, orb.Point{radius * cos, -radius * sin})
	}
	return pts
}

// transformed is a shape placed by an affine transform.
type transformed struct {
	base Shape
	fwd  Transform
	inv  Transform
}

func (t *transformed) Contains(p orb.Point) bool {
	return t.base.Contains(t.inv.Apply(p))
}

func (t *transformed) Bound() orb.Bound {
	return t.Ring().Bound()
}

func (t *transformed) Ring() orb.Ring {
	return orb.Ring(t.fwd.ApplyPath(orb.LineString(t.base.Ring())))
}

func (t *transformed) Area() float64 {
	return t.base.Area() * math.Abs(t.fwd.Det())
}
