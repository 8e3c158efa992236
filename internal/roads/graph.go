// Package roads is the graph-aware routing service: a road network loaded
// from GeoJSON and an A* router that walks nodes along it.
package roads

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Garsondee/smartcam/internal/sim"
)

type edge struct {
	to   int
	cost float64
}

// Graph is a weighted road network. Vertices that share exact coordinates
// are merged, so touching LineStrings form junctions.
type Graph struct {
	metric   sim.Metric
	vertices []orb.Point
	index    map[orb.Point]int
	adj      [][]edge
}

// NewGraph returns an empty graph whose edge costs are measured with metric.
func NewGraph(metric sim.Metric) *Graph {
	return &Graph{metric: metric, index: make(map[orb.Point]int)}
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// Vertex returns the position of vertex i.
func (g *Graph) Vertex(i int) orb.Point { return g.vertices[i] }

// AddVertex returns the index of p, adding it if new.
func (g *Graph) AddVertex(p orb.Point) int {
	if i, ok := g.index[p]; ok {
		return i
	}
	i := len(g.vertices)
	g.vertices = append(g.vertices, p)
	g.adj = append(g.adj, nil)
	g.index[p] = i
	return i
}

// AddEdge links a and b. Two-way unless oneway is set.
func (g *Graph) AddEdge(a, b orb.Point, oneway bool) {
	ia, ib := g.AddVertex(a), g.AddVertex(b)
	if ia == ib {
		return
	}
	cost := g.metric.Distance(a, b)
	g.adj[ia] = append(g.adj[ia], edge{to: ib, cost: cost})
	if !oneway {
		g.adj[ib] = append(g.adj[ib], edge{to: ia, cost: cost})
	}
}

// AddLineString adds consecutive segments of ls.
func (g *Graph) AddLineString(ls orb.LineString, oneway bool) {
	for i := 1; i < len(ls); i++ {
		g.AddEdge(ls[i-1], ls[i], oneway)
	}
}

// Edges calls fn for every directed edge.
func (g *Graph) Edges(fn func(a, b orb.Point)) {
	for i, es := range g.adj {
		for _, e := range es {
			fn(g.vertices[i], g.vertices[e.to])
		}
	}
}

// Nearest returns the vertex closest to p, or -1 on an empty graph.
func (g *Graph) Nearest(p orb.Point) int {
	best, bestD := -1, math.Inf(1)
	for i, v := range g.vertices {
		if d := g.metric.Distance(p, v); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// LoadGeoJSON builds a graph from the LineString and MultiLineString
// features of a FeatureCollection. A feature property "oneway": true makes
// its segments one-directional. Other geometry types are skipped.
func LoadGeoJSON(data []byte, metric sim.Metric) (*Graph, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse road network: %w", err)
	}
	g := NewGraph(metric)
	for _, f := range fc.Features {
		oneway := f.Properties.MustBool("oneway", false)
		switch geom := f.Geometry.(type) {
		case orb.LineString:
			g.AddLineString(geom, oneway)
		case orb.MultiLineString:
			for _, ls := range geom {
				g.AddLineString(ls, oneway)
			}
		}
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("parse road network: no LineString features")
	}
	return g, nil
}
