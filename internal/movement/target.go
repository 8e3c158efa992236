// Package movement composes a target resolver, a routing policy and a speed
// policy into the per-activation move of a node.
package movement

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

var (
	// ErrUnresolvedTarget means the tracked molecule did not yield a
	// position this activation.
	ErrUnresolvedTarget = errors.New("unresolved target")

	// ErrUnreachableTarget means routing found no path to the target.
	ErrUnreachableTarget = errors.New("unreachable target")
)

// Retryable reports whether err is a per-activation condition that the next
// activation may clear.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnreachableTarget) || errors.Is(err, ErrUnresolvedTarget)
}

// floatLiteral matches decimal and scientific literals, signed or not.
var floatLiteral = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// TargetResolver turns a node's state into the position it should head for.
type TargetResolver interface {
	Resolve(n *sim.Node) (orb.Point, bool)
}

// FollowTarget reads a molecule and resolves its value into a position every
// call. Nothing is cached: the molecule may change between activations.
type FollowTarget struct {
	molecule sim.Molecule
}

// NewFollowTarget tracks m.
func NewFollowTarget(m sim.Molecule) *FollowTarget {
	return &FollowTarget{molecule: m}
}

// Molecule returns the tracked molecule.
func (f *FollowTarget) Molecule() sim.Molecule { return f.molecule }

// Resolve implements TargetResolver.
func (f *FollowTarget) Resolve(n *sim.Node) (orb.Point, bool) {
	p, err := f.ResolveErr(n)
	return p, err == nil
}

// ResolveErr is Resolve with the reason for failure.
func (f *FollowTarget) ResolveErr(n *sim.Node) (orb.Point, error) {
	v, ok := n.Concentration(f.molecule)
	if !ok {
		return orb.Point{}, fmt.Errorf("%w: %s has no %q", ErrUnresolvedTarget, n.Label(), f.molecule)
	}
	return ResolveValue(v)
}

// ResolveValue applies the target rules in order: a position is used as-is;
// a sequence uses its first two numeric elements; anything else is rendered
// as text and scanned for the first two float literals.
func ResolveValue(v sim.Value) (orb.Point, error) {
	if p, ok := v.AsPosition(); ok {
		return p, nil
	}
	if els := v.Elements(); len(els) >= 2 {
		x, okX := numeric(els[0])
		y, okY := numeric(els[1])
		if okX && okY {
			return orb.Point{x, y}, nil
		}
	}
	text := v.String()
	lits := floatLiteral.FindAllString(text, 2)
	if len(lits) == 2 {
		x, errX := strconv.ParseFloat(lits[0], 64)
		y, errY := strconv.ParseFloat(lits[1], 64)
		if errX == nil && errY == nil {
			return orb.Point{x, y}, nil
		}
	}
	return orb.Point{}, fmt.Errorf("%w: cannot read two coordinates from %q", ErrUnresolvedTarget, text)
}

func numeric(v sim.Value) (float64, bool) {
	if f, ok := v.AsNumber(); ok {
		return f, true
	}
	if s, ok := v.AsText(); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}
