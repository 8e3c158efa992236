package sim

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Molecule names a dynamically bound attribute on a node.
type Molecule string

// Well-known molecules.
const (
	MoleculeWanted Molecule = "wanted"
	MoleculeTarget Molecule = "target"
	MoleculeVision Molecule = "vision"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
	KindPosition
	KindSequence
	KindVisible
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindPosition:
		return "position"
	case KindSequence:
		return "sequence"
	case KindVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// VisibleNode is a node seen by a sensor, with the position it was seen at.
type VisibleNode struct {
	Node     *Node
	Position orb.Point
}

// Value is the concentration bound to a molecule. It is a closed tagged
// variant; consumers switch on Kind.
type Value struct {
	kind    Kind
	text    string
	num     float64
	pos     orb.Point
	seq     []Value
	visible []VisibleNode
}

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a float.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a flag.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Position wraps a point (x,y or lon,lat).
func Position(p orb.Point) Value { return Value{kind: KindPosition, pos: p} }

// Sequence wraps an ordered list of values.
func Sequence(vs ...Value) Value {
	return Value{kind: KindSequence, seq: append([]Value(nil), vs...)}
}

// Visible wraps a list of sensed nodes.
func Visible(vs []VisibleNode) Value {
	return Value{kind: KindVisible, visible: append([]VisibleNode(nil), vs...)}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsPosition returns the point held by a Position value.
func (v Value) AsPosition() (orb.Point, bool) {
	return v.pos, v.kind == KindPosition
}

// AsNumber returns the float held by a Number value.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsText returns the string held by a Text value.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// Elements returns the items of a Sequence value.
func (v Value) Elements() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.seq
}

// VisibleNodes returns the items of a Visible value.
func (v Value) VisibleNodes() []VisibleNode {
	if v.kind != KindVisible {
		return nil
	}
	return v.visible
}

// Truthy interprets the value as a flag: bools as-is, numbers when non-zero,
// text when it reads "true". Other kinds are true when present.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool, KindNumber:
		return v.num != 0
	case KindText:
		b, err := strconv.ParseBool(strings.TrimSpace(v.text))
		return err == nil && b
	default:
		return true
	}
}

// String renders the value as text. Positions render as "(x, y)".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindPosition:
		return formatPoint(v.pos)
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, e := range v.seq {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindVisible:
		parts := make([]string, len(v.visible))
		for i, e := range v.visible {
			parts[i] = e.Node.Label() + "@" + formatPoint(e.Position)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ""
	}
}

func formatPoint(p orb.Point) string {
	return "(" + strconv.FormatFloat(p[0], 'g', -1, 64) + ", " + strconv.FormatFloat(p[1], 'g', -1, 64) + ")"
}
