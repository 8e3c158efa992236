package roads

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/movement"
	"github.com/Garsondee/smartcam/internal/sim"
)

// Router is a movement.RoutingPolicy that follows the road graph. It keeps
// the current route privately and plans a new one whenever the target moves.
// One Router serves one node.
type Router struct {
	graph *Graph

	target    orb.Point
	waypoints []orb.Point
	next      int
	planned   bool
	plans     int
}

// NewRouter routes over g.
func NewRouter(g *Graph) *Router {
	return &Router{graph: g}
}

// Plans returns how many routes have been computed, for diagnostics.
func (r *Router) Plans() int { return r.plans }

// NextPosition implements movement.RoutingPolicy. The route runs from the
// current position to the nearest road vertex, along the roads, then off-road
// to the target itself.
func (r *Router) NextPosition(env sim.Environment, from, to orb.Point, maxDistance float64) (orb.Point, error) {
	if !r.planned || to != r.target {
		if err := r.plan(from, to); err != nil {
			return from, err
		}
	}

	metric := env.Metric()
	pos := from
	remaining := maxDistance
	for r.next < len(r.waypoints) && remaining > 0 {
		wp := r.waypoints[r.next]
		d := metric.Distance(pos, wp)
		if d <= remaining {
			pos = wp
			remaining -= d
			r.next++
			continue
		}
		pos = metric.Toward(pos, wp, remaining)
		remaining = 0
	}
	return pos, nil
}

func (r *Router) plan(from, to orb.Point) error {
	r.planned = false
	r.waypoints = nil
	r.next = 0
	r.plans++

	start, goal := r.graph.Nearest(from), r.graph.Nearest(to)
	path := r.graph.FindPath(start, goal)
	if path == nil {
		return fmt.Errorf("route %v -> %v: %w", from, to, movement.ErrUnreachableTarget)
	}
	r.waypoints = append(path, to)
	r.target = to
	r.planned = true
	return nil
}
