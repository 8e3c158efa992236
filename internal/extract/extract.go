// Package extract computes per-step numeric samples from an environment,
// for reports and the sample recorder.
package extract

import (
	"errors"
	"math"

	"github.com/Garsondee/smartcam/internal/sim"
)

// ErrUnsupportedEnvironment is returned when an extractor needs a capability
// the environment lacks.
var ErrUnsupportedEnvironment = errors.New("extract: unsupported environment")

// Extractor produces one value per column at a sampling point.
type Extractor interface {
	Columns() []string
	Extract(env sim.Environment, step int64, time float64) (map[string]float64, error)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// DistanceTraveled reports how far cameras and other nodes moved since the
// previous sample.
type DistanceTraveled struct{}

func (DistanceTraveled) Columns() []string { return []string{"CamDist", "ObjDist"} }

func (DistanceTraveled) Extract(env sim.Environment, _ int64, _ float64) (map[string]float64, error) {
	tr, ok := env.(sim.MovementTracker)
	if !ok {
		return nil, ErrUnsupportedEnvironment
	}
	return map[string]float64{
		"CamDist": round4(tr.CameraMovementsSinceLastQuery()),
		"ObjDist": round4(tr.ObjectMovementsSinceLastQuery()),
	}, nil
}

// All runs every extractor and merges the samples.
func All(env sim.Environment, step int64, time float64, xs ...Extractor) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, x := range xs {
		vals, err := x.Extract(env, step, time)
		if err != nil {
			return nil, err
		}
		for k, v := range vals {
			out[k] = v
		}
	}
	return out, nil
}
