package render

import (
	"errors"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/geom"
	"github.com/Garsondee/smartcam/internal/sim"
	"github.com/Garsondee/smartcam/internal/vision"
)

var (
	colWanted    = color.RGBA{R: 255, A: 255}
	colNormal    = color.RGBA{G: 255, A: 255}
	colFOV       = color.RGBA{B: 255, A: 255}
	colBlindSpot = color.RGBA{A: 25} // 10% black
)

// MarkerColor returns the outline colour for a detection marker.
func MarkerColor(m vision.Marker) color.Color {
	if m == vision.MarkerWanted {
		return colWanted
	}
	return colNormal
}

type opKind int

const (
	opStroke opKind = iota
	opFill
)

// drawOp is one primitive of an effect, in screen coordinates.
type drawOp struct {
	kind  opKind
	pts   []orb.Point
	color color.Color
	width float32
}

// SmartcamEffect draws a node's occupancy outline and the field of view of
// its cameras. Unsupported environments and shapes are reported once per
// effect and the affected output is skipped.
type SmartcamEffect struct {
	warn *sim.OnceLogger
}

// NewSmartcamEffect returns an effect logging through logger (nil for the
// default logger).
func NewSmartcamEffect(logger *slog.Logger) *SmartcamEffect {
	return &SmartcamEffect{warn: sim.NewOnceLogger(logger)}
}

// ColorSummary is the legend colour of the effect.
func (e *SmartcamEffect) ColorSummary() color.Color { return colNormal }

func (e *SmartcamEffect) ops(n *sim.Node, env sim.Environment, view vision.View) []drawOp {
	ov, err := vision.BuildOverlay(n, env, view)
	switch {
	case errors.Is(err, vision.ErrIncompatibleEnvironment):
		e.warn.Warn("smartcam effect only works with physics environments")
		return nil
	case errors.Is(err, geom.ErrIncompatibleShape):
		e.warn.Warn("smartcam effect needs nodes with an occupancy shape", "node", n.Label())
	case err != nil:
		e.warn.Warn("smartcam effect skipped", "node", n.Label(), "err", err)
		return nil
	}

	var ops []drawOp
	if ov.Outline != nil {
		ops = append(ops, drawOp{kind: opStroke, pts: ov.Outline, color: MarkerColor(ov.Marker), width: 1})
	}
	for _, c := range ov.Cones {
		ops = append(ops,
			drawOp{kind: opFill, pts: c.BlindSpot, color: colBlindSpot},
			drawOp{kind: opStroke, pts: c.FOV, color: colFOV, width: 1},
			drawOp{kind: opStroke, pts: c.Boundary, color: colFOV, width: 1},
		)
	}
	return ops
}

// Apply draws n onto dst.
func (e *SmartcamEffect) Apply(dst *ebiten.Image, n *sim.Node, env sim.Environment, view vision.View) {
	for _, op := range e.ops(n, env, view) {
		switch op.kind {
		case opFill:
			fillPolygon(dst, op.pts, op.color)
		case opStroke:
			strokePolyline(dst, op.pts, op.width, op.color)
		}
	}
}

func fillPolygon(dst *ebiten.Image, pts []orb.Point, clr color.Color) {
	if len(pts) < 3 {
		return
	}
	var path vector.Path
	path.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		path.LineTo(float32(p[0]), float32(p[1]))
	}
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(clr)
	vector.FillPath(dst, &path, &vector.FillOptions{}, op)
}

func strokePolyline(dst *ebiten.Image, pts []orb.Point, width float32, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		vector.StrokeLine(dst, float32(a[0]), float32(a[1]), float32(b[0]), float32(b[1]), width, clr, true)
	}
}
