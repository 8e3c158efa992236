package roads

import (
	"container/heap"

	"github.com/paulmach/orb"
)

type pathNode struct {
	v      int
	g, h   float64
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int            { return len(ol) }
func (ol openList) Less(i, j int) bool  { return (ol[i].g + ol[i].h) < (ol[j].g + ol[j].h) }
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// FindPath returns the vertex positions of the cheapest route from vertex
// start to vertex goal, both included. Returns nil if no route exists.
func (g *Graph) FindPath(start, goal int) []orb.Point {
	if start < 0 || goal < 0 || start >= g.Len() || goal >= g.Len() {
		return nil
	}
	target := g.vertices[goal]
	heuristic := func(v int) float64 { return g.metric.Distance(g.vertices[v], target) }

	first := &pathNode{v: start, h: heuristic(start)}
	ol := &openList{first}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := map[int]*pathNode{start: first}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.v == goal {
			return g.buildPath(cur)
		}
		if closed[cur.v] {
			continue
		}
		closed[cur.v] = true

		for _, e := range g.adj[cur.v] {
			if closed[e.to] {
				continue
			}
			cost := cur.g + e.cost
			if prev, ok := best[e.to]; ok && cost >= prev.g {
				continue
			}
			n := &pathNode{v: e.to, g: cost, h: heuristic(e.to), parent: cur}
			best[e.to] = n
			heap.Push(ol, n)
		}
	}
	return nil
}

func (g *Graph) buildPath(end *pathNode) []orb.Point {
	var path []orb.Point
	for n := end; n != nil; n = n.parent {
		path = append(path, g.vertices[n.v])
	}
	// Reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
