package extract

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/sim"
)

type velocityBucket struct {
	name   string
	maxKmh float64
}

// Upper bounds are inclusive, in km/h.
var velocityBuckets = []velocityBucket{
	{"0-1", 1}, {"1-2", 2}, {"2-3", 3}, {"3-4", 4}, {"4-5", 5}, {"5-6", 6}, {"6-10", 10},
}

const overflowBucket = ">10"

// VelocityHistogram counts, per speed band in km/h, how many nodes carrying
// a molecule moved at that speed since the previous sample. Positions are
// compared with the environment metric, which is meters on maps.
type VelocityHistogram struct {
	molecule    sim.Molecule
	stepSeconds float64
	prev        map[uuid.UUID]orb.Point
}

// NewVelocityHistogram samples every stepSeconds of simulated time.
func NewVelocityHistogram(molecule sim.Molecule, stepSeconds float64) (*VelocityHistogram, error) {
	if !(stepSeconds > 0) {
		return nil, fmt.Errorf("velocity: sampling step must be positive, got %g", stepSeconds)
	}
	return &VelocityHistogram{molecule: molecule, stepSeconds: stepSeconds}, nil
}

func (v *VelocityHistogram) Columns() []string {
	cols := make([]string, 0, len(velocityBuckets)+1)
	for _, b := range velocityBuckets {
		cols = append(cols, b.name)
	}
	return append(cols, overflowBucket)
}

func bucketFor(kmh float64) string {
	for _, b := range velocityBuckets {
		if kmh <= b.maxKmh {
			return b.name
		}
	}
	return overflowBucket
}

// Extract compares positions with the previous call. Nodes first seen in
// this call are not counted.
func (v *VelocityHistogram) Extract(env sim.Environment, _ int64, _ float64) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, c := range v.Columns() {
		out[c] = 0
	}
	metric := env.Metric()
	cur := make(map[uuid.UUID]orb.Point)
	for _, n := range env.Nodes() {
		if !n.Contains(v.molecule) {
			continue
		}
		p := env.Position(n)
		cur[n.ID()] = p
		if old, ok := v.prev[n.ID()]; ok {
			kmh := metric.Distance(old, p) / v.stepSeconds * 3.6
			out[bucketFor(kmh)]++
		}
	}
	v.prev = cur
	return out, nil
}
