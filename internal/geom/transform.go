package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// degenerateDet is the determinant magnitude below which a transform is
// treated as non-invertible.
const degenerateDet = 1e-12

// Transform is a 2D affine map:
//
//	x' = a*x + c*y + tx
//	y' = b*x + d*y + ty
//
// Transforms are values; every method returns a new Transform.
type Transform struct {
	a, b, c, d float64
	tx, ty     float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{a: 1, d: 1}
}

// Build returns the pose transform for a node drawn at screen anchor
// (anchorX, anchorY) with the given zoom and heading (radians, counter-clockwise
// in world space). The order is translate, then scale, then rotate by the
// negated heading, since the screen y axis points down.
//
// A zoom <= 0 (or NaN) produces a degenerate transform: Validate reports it and
// ApplyShape refuses it.
func Build(anchorX, anchorY, zoom, heading float64) Transform {
	if !(zoom > 0) {
		// Negative zoom would still invert; collapse it so callers see it.
		zoom = 0
	}
	return Identity().
		Translate(anchorX, anchorY).
		Scale(zoom, zoom).
		Rotate(-heading)
}

// Translate appends a translation. It is applied to points before any
// transform already held by t.
func (t Transform) Translate(x, y float64) Transform {
	return t.Concat(Transform{a: 1, d: 1, tx: x, ty: y})
}

// Scale appends a scale.
func (t Transform) Scale(sx, sy float64) Transform {
	return t.Concat(Transform{a: sx, d: sy})
}

// Rotate appends a rotation by theta radians.
func (t Transform) Rotate(theta float64) Transform {
	sin, cos := math.Sincos(theta)
	return t.Concat(Transform{a: cos, b: sin, c: -sin, d: cos})
}

// Concat returns t*o: o is applied first, then t.
func (t Transform) Concat(o Transform) Transform {
	return Transform{
		a:  t.a*o.a + t.c*o.b,
		b:  t.b*o.a + t.d*o.b,
		c:  t.a*o.c + t.c*o.d,
		d:  t.b*o.c + t.d*o.d,
		tx: t.a*o.tx + t.c*o.ty + t.tx,
		ty: t.b*o.tx + t.d*o.ty + t.ty,
	}
}

// Apply maps a point.
func (t Transform) Apply(p orb.Point) orb.Point {
	return orb.Point{
		t.a*p[0] + t.c*p[1] + t.tx,
		t.b*p[0] + t.d*p[1] + t.ty,
	}
}

// ApplyPath maps every vertex of an open polyline into a new LineString.
func (t Transform) ApplyPath(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = t.Apply(p)
	}
	return out
}

// Det returns the determinant of the linear part.
func (t Transform) Det() float64 {
	return t.a*t.d - t.b*t.c
}

// Validate reports ErrInvalidGeometryParameter when t cannot be inverted.
func (t Transform) Validate() error {
	det := t.Det()
	if math.IsNaN(det) || math.IsInf(det, 0) || math.Abs(det) < degenerateDet {
		return fmt.Errorf("%w: degenerate transform (det=%g)", ErrInvalidGeometryParameter, det)
	}
	return nil
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() (Transform, error) {
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	det := t.Det()
	inv := Transform{
		a: t.d / det,
		b: -t.b / det,
		c: -t.c / det,
		d: t.a / det,
	}
	inv.tx = -(inv.a*t.tx + inv.c*t.ty)
	inv.ty = -(inv.b*t.tx + inv.d*t.ty)
	return inv, nil
}

// Elements returns the matrix as (a, b, c, d, tx, ty) for adapters that need
// to hand it to a drawing library.
func (t Transform) Elements() (a, b, c, d, tx, ty float64) {
	return t.a, t.b, t.c, t.d, t.tx, t.ty
}

// ApplyShape returns s placed in the target space of t. The input shape is
// left untouched.
func (t Transform) ApplyShape(s Shape) (Shape, error) {
	inv, err := t.Inverse()
	if err != nil {
		return nil, err
	}
	if ts, ok := s.(*transformed); ok {
		// Collapse nested transforms so the inverse chain stays short.
		full := t.Concat(ts.fwd)
		return &transformed{base: ts.base, fwd: full, inv: ts.inv.Concat(inv)}, nil
	}
	return &transformed{base: s, fwd: t, inv: inv}, nil
}
