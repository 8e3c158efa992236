package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/smartcam/internal/roads"
	"github.com/Garsondee/smartcam/internal/sim"
	"github.com/Garsondee/smartcam/internal/vision"
)

var (
	colRoad     = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	colNode     = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	colTarget   = color.RGBA{R: 255, G: 200, B: 40, A: 255}
	colLabel    = color.RGBA{R: 200, G: 220, B: 200, A: 255}
	colPanel    = color.RGBA{R: 10, G: 12, B: 10, A: 220}
	colPanelRim = color.RGBA{R: 50, G: 70, B: 50, A: 255}
)

var labelFace = text.NewGoXFace(basicfont.Face7x13)

// LineHeight is the pixel height of one label line.
const LineHeight = 14

// DrawLabel writes s with its top-left corner at (x, y).
func DrawLabel(dst *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = LineHeight
	text.Draw(dst, s, labelFace, op)
}

// DrawPanel draws a framed text panel of lines at (x, y).
func DrawPanel(dst *ebiten.Image, lines []string, x, y float32) {
	w := float32(0)
	for _, l := range lines {
		if lw := float32(len(l) * 7); lw > w {
			w = lw
		}
	}
	w += 12
	h := float32(len(lines)*LineHeight + 8)
	vector.FillRect(dst, x, y, w, h, colPanel, false)
	vector.StrokeRect(dst, x, y, w, h, 1.0, colPanelRim, false)
	for i, l := range lines {
		DrawLabel(dst, l, float64(x)+6, float64(y)+4+float64(i*LineHeight), colLabel)
	}
}

// DrawRoads strokes every edge of g.
func DrawRoads(dst *ebiten.Image, g *roads.Graph, view vision.View) {
	g.Edges(func(a, b orb.Point) {
		pa, pb := view.ViewPoint(a), view.ViewPoint(b)
		vector.StrokeLine(dst, float32(pa[0]), float32(pa[1]), float32(pb[0]), float32(pb[1]), 2, colRoad, true)
	})
}

// DrawNode draws a position dot, the heading tick on physics environments,
// and the node label.
func DrawNode(dst *ebiten.Image, n *sim.Node, env sim.Environment, view vision.View) {
	p := view.ViewPoint(env.Position(n))
	x, y := float32(p[0]), float32(p[1])
	clr := colNode
	if n.Contains(sim.MoleculeTarget) {
		clr = colTarget
	}
	vector.FillCircle(dst, x, y, 3, clr, true)
	if penv, ok := env.(sim.PhysicsEnvironment); ok {
		h := penv.Heading(n)
		vector.StrokeLine(dst, x, y, x+float32(h[0]*10), y-float32(h[1]*10), 1, clr, true)
	}
	DrawLabel(dst, n.Label(), p[0]+6, p[1]-LineHeight, colLabel)
}
