// Package vision models a smart camera's field of view: a pie-shaped cone
// with a near-range blind spot, placed by the same pose transform that is
// used to draw it.
package vision

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/geom"
)

// ErrIncompatibleEnvironment is returned when perception or drawing is asked
// of an environment that does not keep headings.
var ErrIncompatibleEnvironment = errors.New("vision: environment does not support headings")

// BoundaryEpsilon offsets the blind-spot boundary arc from the filled
// region, in radians (0.1 degrees).
const BoundaryEpsilon = 0.1 * math.Pi / 180

// Spec is a validated field-of-view description.
type Spec struct {
	aperture  float64
	distance  float64
	blindSpot float64
}

// NewSpec validates aperture (radians, in (0, 2π]), distance (> 0) and
// blindSpot (in [0, distance]).
func NewSpec(aperture, distance, blindSpot float64) (Spec, error) {
	switch {
	case !(aperture > 0) || aperture > 2*math.Pi:
		return Spec{}, fmt.Errorf("%w: aperture must be in (0, 2π], got %g", geom.ErrInvalidGeometryParameter, aperture)
	case !(distance > 0) || math.IsInf(distance, 0):
		return Spec{}, fmt.Errorf("%w: view distance must be positive and finite, got %g", geom.ErrInvalidGeometryParameter, distance)
	case !(blindSpot >= 0) || blindSpot > distance:
		return Spec{}, fmt.Errorf("%w: blind spot must be in [0, %g], got %g", geom.ErrInvalidGeometryParameter, distance, blindSpot)
	}
	return Spec{aperture: aperture, distance: distance, blindSpot: blindSpot}, nil
}

// NewSpecDegrees is NewSpec with the aperture given in degrees.
func NewSpecDegrees(angle, distance, blindSpot float64) (Spec, error) {
	return NewSpec(angle*math.Pi/180, distance, blindSpot)
}

// Aperture returns the cone angle in radians.
func (s Spec) Aperture() float64 { return s.aperture }

// Distance returns the view distance.
func (s Spec) Distance() float64 { return s.distance }

// BlindSpot returns the blind-spot radius.
func (s Spec) BlindSpot() float64 { return s.blindSpot }

// Regions are the three pieces of a field of view.
type Regions struct {
	FOV               geom.Shape
	BlindSpot         geom.Shape
	BlindSpotBoundary orb.LineString
}

// Regions builds the field of view in local, unrotated coordinates: the
// cone opens symmetrically around +x.
func (s Spec) Regions() Regions {
	start := -s.aperture / 2
	// Parameters were checked by NewSpec, so the factory cannot fail here.
	fov, _ := geom.CircleSector(s.distance, start, s.aperture)
	blind, _ := geom.CircleSector(s.blindSpot, start, s.aperture)
	return Regions{
		FOV:               fov,
		BlindSpot:         blind,
		BlindSpotBoundary: geom.NewArc(s.blindSpot, start+BoundaryEpsilon, s.aperture+BoundaryEpsilon).Path(),
	}
}

// Transformed places all three regions with t.
func (r Regions) Transformed(t geom.Transform) (Regions, error) {
	fov, err := t.ApplyShape(r.FOV)
	if err != nil {
		return Regions{}, fmt.Errorf("place field of view: %w", err)
	}
	blind, err := t.ApplyShape(r.BlindSpot)
	if err != nil {
		return Regions{}, fmt.Errorf("place blind spot: %w", err)
	}
	return Regions{
		FOV:               fov,
		BlindSpot:         blind,
		BlindSpotBoundary: t.ApplyPath(r.BlindSpotBoundary),
	}, nil
}
