package scenario

import (
	"context"
	"fmt"
	"sort"

	"github.com/Garsondee/smartcam/internal/extract"
	"github.com/Garsondee/smartcam/internal/sim"
)

// SampleFunc receives one merged sample of every extractor.
type SampleFunc func(step int64, time float64, samples map[string]float64) error

// Sample runs the extractors against the current state. A verbose SimLog
// gets one extract entry per column.
func (w *World) Sample() (map[string]float64, error) {
	step, t := w.Engine.Steps(), w.Engine.Time()
	samples, err := extract.All(w.Env, step, t, w.Extractors...)
	if err != nil || !w.Engine.Log.Verbose() {
		return samples, err
	}
	cols := make([]string, 0, len(samples))
	for c := range samples {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		w.Engine.Log.Add(step, t, "--", "extract", c, "", samples[c])
	}
	return samples, nil
}

// Run advances the engine to w.Until, sampling every w.SampleEvery units of
// simulated time. It stops early when ctx is cancelled or fn fails.
func (w *World) Run(ctx context.Context, fn SampleFunc) error {
	if !(w.SampleEvery > 0) {
		return fmt.Errorf("run %s: sample interval must be positive", w.Name)
	}
	for i := 1; ; i++ {
		next := float64(i) * w.SampleEvery
		if next > w.Until {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.Engine.RunUntil(next)
		samples, err := w.Sample()
		if err != nil {
			return fmt.Errorf("sample at t=%g: %w", next, err)
		}
		if fn != nil {
			if err := fn(w.Engine.Steps(), w.Engine.Time(), samples); err != nil {
				return err
			}
		}
	}
	w.logger.Debug("run finished", "name", w.Name, "steps", w.Engine.Steps(), "time", w.Engine.Time())
	return nil
}

// TrackVelocity adds a speed histogram of the target nodes, sampled at the
// world's sampling interval.
func (w *World) TrackVelocity() error {
	v, err := extract.NewVelocityHistogram(sim.MoleculeTarget, w.SampleEvery)
	if err != nil {
		return err
	}
	w.Extractors = append(w.Extractors, v)
	return nil
}
