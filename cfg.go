package main

import (
	"bytes"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zucenko/mazerace/app"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/editor"
	"github.com/zucenko/mazerace/gateway"
)

// Faces are the two text sizes the window uses.
type Faces struct {
	Small font.Face
	Large font.Face
}

// Load reads the configuration and wires the controller to the backend.
func Load(args []string) (g *Game, e error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn(err)
	}
	cfg, err := config.Load(args[0], args[1:], os.Getenv)
	if err != nil {
		e = err
		return
	}
	cfg.SetupLogging()

	faces, err := loadFaces(cfg.Font)
	if err != nil {
		e = err
		return
	}
	variant := editor.Single
	if cfg.Variant == "race" {
		variant = editor.Race
	}
	ctl := app.NewController(app.Options{
		Variant:  variant,
		Rows:     cfg.Rows,
		Cols:     cfg.Cols,
		CellSize: cfg.CellSize,
		Tick:     cfg.Tick,
		Reveal:   cfg.Reveal,
		Timeout:  cfg.Timeout,
		Algo1:    cfg.Algo1,
		Algo2:    cfg.Algo2,
	}, gateway.NewClient(cfg.Backend, cfg.Timeout))
	log.WithFields(log.Fields{"variant": variant.Name(), "backend": cfg.Backend}).Info("starting")
	return NewGame(ctl, faces, cfg.CellSize)
}

func fontData(path string) ([]byte, error) {
	if path == "" {
		return goregular.TTF, nil
	}
	file, err := ebitenutil.OpenFile(path)
	if err != nil {
		log.Printf("failed opening font: %s", err)
		return nil, err
	}
	defer file.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadFaces(path string) (Faces, error) {
	dat, err := fontData(path)
	if err != nil {
		return Faces{}, err
	}
	tt, err := truetype.Parse(dat)
	if err != nil {
		return Faces{}, err
	}
	const dpi = 72
	face := func(size float64) font.Face {
		return truetype.NewFace(tt, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
	}
	return Faces{Small: face(14), Large: face(28)}, nil
}
