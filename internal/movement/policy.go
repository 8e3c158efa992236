package movement

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

// DefaultSpeed is the walking speed used by NewTargetMapWalker, in
// environment units (meters on a map) per unit of time.
const DefaultSpeed = 1.5

// RateSource exposes the activation rate of whatever drives the move.
// *sim.Reaction satisfies it.
type RateSource interface {
	Rate() float64
}

// SpeedPolicy decides how far a node may travel this activation.
// Implementations return a finite, non-negative distance.
type SpeedPolicy interface {
	NodeMovementLength(n *sim.Node, target orb.Point) float64
}

// ConstantSpeed keeps an average speed regardless of how often the reaction
// fires: each activation covers speed/rate.
type ConstantSpeed struct {
	source RateSource
	speed  float64
}

// NewConstantSpeed returns a ConstantSpeed policy. Speed must be finite and
// non-negative.
func NewConstantSpeed(source RateSource, speed float64) (*ConstantSpeed, error) {
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("constant speed: speed must be finite and >= 0, got %g", speed)
	}
	return &ConstantSpeed{source: source, speed: speed}, nil
}

// NodeMovementLength implements SpeedPolicy.
func (c *ConstantSpeed) NodeMovementLength(_ *sim.Node, _ orb.Point) float64 {
	rate := c.source.Rate()
	if !(rate > 0) || math.IsInf(rate, 0) {
		return 0
	}
	return c.speed / rate
}

// RoutingPolicy produces the position a node reaches when it travels at most
// maxDistance from from toward to. A policy that cannot make progress
// returns an error wrapping ErrUnreachableTarget.
type RoutingPolicy interface {
	NextPosition(env sim.Environment, from, to orb.Point, maxDistance float64) (orb.Point, error)
}

// IgnoreStreets moves in a straight line (a great circle on maps) and never
// overshoots the target.
type IgnoreStreets struct{}

// NextPosition implements RoutingPolicy.
func (IgnoreStreets) NextPosition(env sim.Environment, from, to orb.Point, maxDistance float64) (orb.Point, error) {
	return env.Metric().Toward(from, to, maxDistance), nil
}
