package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/paulmach/orb"

	"github.com/Garsondee/smartcam/internal/config"
	"github.com/Garsondee/smartcam/internal/scenario"
	"github.com/Garsondee/smartcam/internal/viewer"
)

func main() {
	var path string
	var width, height int
	flag.StringVar(&path, "scenario", "scenarios/blindspot.yaml", "scenario YAML file")
	flag.IntVar(&width, "width", 1280, "window width")
	flag.IntVar(&height, "height", 800, "window height")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	build := func() (*scenario.World, error) {
		return scenario.FromConfig(cfg, filepath.Dir(path), logger)
	}
	g, err := viewer.New(build, width, height, orb.Point(cfg.View.Center), *cfg.View.Zoom, logger)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("Smart Camera - " + cfg.Name)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
