package extract

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Garsondee/smartcam/internal/sim"
)

// CamerasKCoverage reports, for j = k..1, the fraction of targets seen by at
// least j cameras. A target is a node whose target molecule is truthy; a
// camera is a node carrying the vision molecule.
type CamerasKCoverage struct {
	vision  sim.Molecule
	target  sim.Molecule
	k       int
	columns []string
}

// NewCamerasKCoverage requires k > 0.
func NewCamerasKCoverage(vision, target sim.Molecule, k int) (*CamerasKCoverage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k-coverage: k must be positive, got %d", k)
	}
	cols := make([]string, 0, k)
	for j := k; j >= 1; j-- {
		cols = append(cols, fmt.Sprintf("%d-coverage", j))
	}
	return &CamerasKCoverage{vision: vision, target: target, k: k, columns: cols}, nil
}

func (c *CamerasKCoverage) Columns() []string { return c.columns }

func (c *CamerasKCoverage) isTarget(n *sim.Node) bool {
	v, ok := n.Concentration(c.target)
	return ok && v.Truthy()
}

func (c *CamerasKCoverage) Extract(env sim.Environment, _ int64, _ float64) (map[string]float64, error) {
	nodes := env.Nodes()
	targets := 0
	for _, n := range nodes {
		if c.isTarget(n) {
			targets++
		}
	}
	out := make(map[string]float64, c.k)
	if targets == 0 {
		for _, col := range c.columns {
			out[col] = math.NaN()
		}
		return out, nil
	}

	seenBy := make(map[uuid.UUID]int)
	for _, n := range nodes {
		v, ok := n.Concentration(c.vision)
		if !ok {
			continue
		}
		if v.Kind() != sim.KindVisible {
			return nil, fmt.Errorf("k-coverage: %s holds %s, expected visible nodes", n.Label(), v.Kind())
		}
		for _, vn := range v.VisibleNodes() {
			if c.isTarget(vn.Node) {
				seenBy[vn.Node.ID()]++
			}
		}
	}

	// atLeast[j] counts targets seen by >= j cameras.
	atLeast := make([]int, c.k+1)
	for _, cams := range seenBy {
		for j := 1; j <= c.k && j <= cams; j++ {
			atLeast[j]++
		}
	}
	for j := 1; j <= c.k; j++ {
		out[fmt.Sprintf("%d-coverage", j)] = round4(float64(atLeast[j]) / float64(targets))
	}
	return out, nil
}
