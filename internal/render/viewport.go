// Package render draws simulation state onto ebiten images. Geometry comes
// in already placed by the vision package; this package only rasterises it.
package render

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	minZoom = 0.05
	maxZoom = 400.0
)

// Viewport maps world coordinates to screen pixels: the world point Center
// sits in the middle of a Width×Height surface, Scale pixels per world unit,
// y up in the world and down on screen.
type Viewport struct {
	Center orb.Point
	Scale  float64
	Width  int
	Height int
}

// NewViewport centres a w×h surface on center.
func NewViewport(w, h int, center orb.Point, scale float64) *Viewport {
	return &Viewport{Center: center, Scale: scale, Width: w, Height: h}
}

// ViewPoint implements vision.View.
func (v *Viewport) ViewPoint(p orb.Point) orb.Point {
	return orb.Point{
		float64(v.Width)/2 + (p[0]-v.Center[0])*v.Scale,
		float64(v.Height)/2 - (p[1]-v.Center[1])*v.Scale,
	}
}

// Zoom implements vision.View.
func (v *Viewport) Zoom() float64 { return v.Scale }

// WorldPoint is the inverse of ViewPoint.
func (v *Viewport) WorldPoint(s orb.Point) orb.Point {
	return orb.Point{
		v.Center[0] + (s[0]-float64(v.Width)/2)/v.Scale,
		v.Center[1] - (s[1]-float64(v.Height)/2)/v.Scale,
	}
}

// Pan moves the view by a screen-space offset in pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.Center[0] += dx / v.Scale
	v.Center[1] -= dy / v.Scale
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// screen position s fixed.
func (v *Viewport) ZoomAt(s orb.Point, factor float64) {
	before := v.WorldPoint(s)
	v.Scale = math.Max(minZoom, math.Min(maxZoom, v.Scale*factor))
	after := v.WorldPoint(s)
	v.Center[0] += before[0] - after[0]
	v.Center[1] += before[1] - after[1]
}

// Fit centres the view on b and picks the largest scale that shows all of
// it with a margin in pixels.
func (v *Viewport) Fit(b orb.Bound, margin float64) {
	v.Center = b.Center()
	w := b.Right() - b.Left()
	h := b.Top() - b.Bottom()
	sx := (float64(v.Width) - 2*margin) / w
	sy := (float64(v.Height) - 2*margin) / h
	s := math.Min(sx, sy)
	if math.IsInf(s, 0) || math.IsNaN(s) || s <= 0 {
		return
	}
	v.Scale = math.Max(minZoom, math.Min(maxZoom, s))
}
