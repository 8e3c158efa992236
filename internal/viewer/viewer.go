// Package viewer is the interactive window over a running scenario.
package viewer

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/render"
	"github.com/Garsondee/smartcam/internal/scenario"
)

// ticksPerSecond is ebiten's default update rate; one second of wall time
// advances the simulation by simSpeed time units.
const ticksPerSecond = 60

var speeds = []float64{0, 0.5, 1, 2, 4, 8}

var colBackground = color.RGBA{R: 18, G: 22, B: 18, A: 255}

// BuildFunc rebuilds the world from scratch, used for restarts.
type BuildFunc func() (*scenario.World, error)

// Game implements ebiten.Game over a scenario world.
type Game struct {
	build  BuildFunc
	world  *scenario.World
	view   *render.Viewport
	effect *render.SmartcamEffect
	logger *slog.Logger

	simSpeed   float64
	showHUD    bool
	status     string // last one-off message, e.g. clipboard result
	samples    map[string]float64
	nextSample float64

	prevKeys map[ebiten.Key]bool
}

// New builds the first world, viewed centred on center at zoom pixels per
// world unit.
func New(build BuildFunc, width, height int, center orb.Point, zoom float64, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := build()
	if err != nil {
		return nil, err
	}
	g := &Game{
		build:    build,
		world:    w,
		view:     render.NewViewport(width, height, center, zoom),
		effect:   render.NewSmartcamEffect(logger),
		logger:   logger,
		simSpeed: 1,
		showHUD:  true,
		prevKeys: map[ebiten.Key]bool{},
	}
	g.nextSample = w.SampleEvery
	return g, nil
}

// World returns the world being shown.
func (g *Game) World() *scenario.World { return g.world }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.handleInput()
	return g.advance(g.simSpeed / ticksPerSecond)
}

// advance moves simulated time forward by dt, stopping at the world's end
// time, and refreshes the extractor samples at the sampling interval.
func (g *Game) advance(dt float64) error {
	if !(dt > 0) {
		return nil
	}
	w := g.world
	to := math.Min(w.Engine.Time()+dt, w.Until)
	if to <= w.Engine.Time() {
		return nil
	}
	for g.nextSample <= to {
		w.Engine.RunUntil(g.nextSample)
		s, err := w.Sample()
		if err != nil {
			return fmt.Errorf("sample at t=%g: %w", g.nextSample, err)
		}
		g.samples = s
		g.nextSample += w.SampleEvery
	}
	w.Engine.RunUntil(to)
	return nil
}

func (g *Game) restart() {
	w, err := g.build()
	if err != nil {
		g.status = "restart failed: " + err.Error()
		g.logger.Warn("restart failed", "err", err)
		return
	}
	g.world = w
	g.samples = nil
	g.nextSample = w.SampleEvery
	g.status = "restarted"
}

// fit frames every node.
func (g *Game) fit() {
	nodes := g.world.Env.Nodes()
	if len(nodes) == 0 {
		return
	}
	b := orb.Bound{Min: g.world.Env.Position(nodes[0]), Max: g.world.Env.Position(nodes[0])}
	for _, n := range nodes[1:] {
		b = b.Extend(g.world.Env.Position(n))
	}
	if g.world.Roads != nil {
		for i := 0; i < g.world.Roads.Len(); i++ {
			b = b.Extend(g.world.Roads.Vertex(i))
		}
	}
	if b.Left() == b.Right() && b.Top() == b.Bottom() {
		g.view.Center = b.Center()
		return
	}
	g.view.Fit(b, 60)
}

func slower(s float64) float64 {
	for i := len(speeds) - 1; i >= 0; i-- {
		if speeds[i] < s {
			return speeds[i]
		}
	}
	return speeds[0]
}

func faster(s float64) float64 {
	for _, v := range speeds {
		if v > s {
			return v
		}
	}
	return speeds[len(speeds)-1]
}

// pressed reports a key that went down this frame.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	const panPixels = 8.0
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.view.Pan(0, -panPixels)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.view.Pan(0, panPixels)
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.view.Pan(-panPixels, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.view.Pan(panPixels, 0)
	}

	// Wheel zooms around the cursor, =/- around the centre.
	if _, wy := ebiten.Wheel(); wy != 0 {
		mx, my := ebiten.CursorPosition()
		g.view.ZoomAt(orb.Point{float64(mx), float64(my)}, math.Pow(1.12, wy))
	}
	mid := orb.Point{float64(g.view.Width) / 2, float64(g.view.Height) / 2}
	if g.pressed(cur, ebiten.KeyEqual) {
		g.view.ZoomAt(mid, 1.25)
	}
	if g.pressed(cur, ebiten.KeyMinus) {
		g.view.ZoomAt(mid, 1/1.25)
	}
	if g.pressed(cur, ebiten.KeyF) {
		g.fit()
	}

	// P pause/resume, , slower, . faster.
	if g.pressed(cur, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(cur, ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}

	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyR) {
		g.restart()
	}
	if g.pressed(cur, ebiten.KeyC) {
		g.copySummary()
	}

	g.prevKeys = cur
}

func (g *Game) copySummary() {
	if err := clipboard.WriteAll(g.Summary()); err != nil {
		g.status = "clipboard unavailable"
		g.logger.Warn("copy summary", "err", err)
		return
	}
	g.status = "summary copied"
}

// Summary is a plain-text dump of the run state: time, coverage samples and
// what each camera currently sees.
func (g *Game) Summary() string {
	var sb strings.Builder
	w := g.world
	fmt.Fprintf(&sb, "scenario %s t=%.2f steps=%d\n", w.Name, w.Engine.Time(), w.Engine.Steps())
	for _, l := range sampleLines(g.samples) {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	for _, c := range w.Cameras {
		seen := make([]string, 0, len(c.SeenTargets()))
		for _, n := range c.SeenTargets() {
			seen = append(seen, n.Label())
		}
		fmt.Fprintf(&sb, "%s sees [%s]\n", c.Node().Label(), strings.Join(seen, ","))
	}
	return sb.String()
}

func sampleLines(s map[string]float64) []string {
	if s == nil {
		return nil
	}
	var out []string
	for k := len(s); k >= 1; k-- {
		col := fmt.Sprintf("%d-coverage", k)
		if v, ok := s[col]; ok {
			out = append(out, fmt.Sprintf("%s %.2f", col, v))
		}
	}
	return out
}

func (g *Game) hudLines() []string {
	speed := fmt.Sprintf("x%g", g.simSpeed)
	if g.simSpeed == 0 {
		speed = "paused"
	}
	lines := []string{
		fmt.Sprintf("%s  t=%.1f/%.0f  %s", g.world.Name, g.world.Engine.Time(), g.world.Until, speed),
	}
	lines = append(lines, sampleLines(g.samples)...)
	lines = append(lines, "WASD pan  wheel/=- zoom  F fit  P , . speed  R restart  C copy  H hide")
	if g.status != "" {
		lines = append(lines, g.status)
	}
	return lines
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	w := g.world
	if w.Roads != nil {
		render.DrawRoads(screen, w.Roads, g.view)
	}
	for _, n := range w.Env.Nodes() {
		g.effect.Apply(screen, n, w.Env, g.view)
		render.DrawNode(screen, n, w.Env, g.view)
	}
	if g.showHUD {
		render.DrawPanel(screen, g.hudLines(), 8, 8)
	}
}

// Layout implements ebiten.Game; the viewport follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.Width, g.view.Height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
