// Package sim holds the simulation substrate the movement and perception code
// runs on: nodes and their molecules, environments that own positions and
// headings, reactions and a deterministic event engine.
package sim

import (
	"github.com/google/uuid"

	"github.com/Garsondee/smartcam/internal/geom"
)

// Node is a simulated entity. Its position and heading live in the
// Environment; the node carries identity, molecules, reactions and an
// optional occupancy shape.
type Node struct {
	id        uuid.UUID
	label     string
	molecules map[Molecule]Value
	reactions []*Reaction
	shape     geom.Shape
}

// NewNode creates a node with a fresh identity.
func NewNode(label string) *Node {
	return &Node{
		id:        uuid.New(),
		label:     label,
		molecules: make(map[Molecule]Value),
	}
}

// ID returns the node identity.
func (n *Node) ID() uuid.UUID { return n.id }

// Label returns the human-readable name, e.g. "cam0".
func (n *Node) Label() string { return n.label }

// SetConcentration binds v to m.
func (n *Node) SetConcentration(m Molecule, v Value) {
	n.molecules[m] = v
}

// Concentration returns the value bound to m.
func (n *Node) Concentration(m Molecule) (Value, bool) {
	v, ok := n.molecules[m]
	return v, ok
}

// Contains reports whether m is bound.
func (n *Node) Contains(m Molecule) bool {
	_, ok := n.molecules[m]
	return ok
}

// RemoveConcentration unbinds m.
func (n *Node) RemoveConcentration(m Molecule) {
	delete(n.molecules, m)
}

// Shape returns the occupancy shape, or nil.
func (n *Node) Shape() geom.Shape { return n.shape }

// SetShape sets the occupancy shape in local coordinates.
func (n *Node) SetShape(s geom.Shape) { n.shape = s }

// Reactions returns the reactions owned by the node.
func (n *Node) Reactions() []*Reaction { return n.reactions }

// Actions returns every action across the node's reactions.
func (n *Node) Actions() []Action {
	var out []Action
	for _, r := range n.reactions {
		out = append(out, r.actions...)
	}
	return out
}
