package geom

import (
	"fmt"
	"math"
)

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidGeometryParameter, name, v)
	}
	return nil
}

// EggShapedEllipse returns an ellipse centred at the origin with horizontal
// semi-axis radius*ratio and vertical semi-axis radius.
func EggShapedEllipse(radius, ratio float64) (*Ellipse, error) {
	if err := positive("radius", radius); err != nil {
		return nil, err
	}
	if err := positive("ratio", ratio); err != nil {
		return nil, err
	}
	return &Ellipse{rx: radius * ratio, ry: radius}, nil
}

// Circle returns a circle of the given radius centred at the origin.
func Circle(radius float64) (*Ellipse, error) {
	return EggShapedEllipse(radius, 1)
}

// CircleSector returns a pie sector. A zero radius yields the empty sector;
// sweep must lie in [0, 2π].
func CircleSector(radius, start, sweep float64) (*Sector, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: sector radius must be >= 0, got %g", ErrInvalidGeometryParameter, radius)
	}
	if sweep < 0 || sweep > 2*math.Pi || math.IsNaN(sweep) {
		return nil, fmt.Errorf("%w: sector sweep must be in [0, 2π], got %g", ErrInvalidGeometryParameter, sweep)
	}
	if math.IsNaN(start) || math.IsInf(start, 0) {
		return nil, fmt.Errorf("%w: sector start must be finite", ErrInvalidGeometryParameter)
	}
	return &Sector{radius: radius, start: start, sweep: sweep}, nil
}
