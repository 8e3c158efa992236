// Package geom holds the 2D shapes and affine transforms shared by the
// movement, perception and rendering code. Shapes are built in local,
// centre-relative coordinates and placed in a target space by a Transform.
package geom

import "errors"

var (
	// ErrInvalidGeometryParameter is returned for non-positive radii, ratios,
	// zoom factors and malformed field-of-view parameters.
	ErrInvalidGeometryParameter = errors.New("invalid geometry parameter")

	// ErrIncompatibleShape is returned when an operation is asked of a shape
	// type it does not support.
	ErrIncompatibleShape = errors.New("incompatible shape")
)
