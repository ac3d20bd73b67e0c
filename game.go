package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"golang.org/x/image/font"

	"github.com/zucenko/mazerace/app"
	"github.com/zucenko/mazerace/editor"
	"github.com/zucenko/mazerace/render"
)

const (
	panelWidth   = 200
	buttonHeight = 28
	buttonGap    = 6
	margin       = 10
)

var (
	colorPanel        = render.HexToNRGBA(0xf0f0f0, 1)
	colorButton       = render.HexToNRGBA(0xdddddd, 1)
	colorButtonActive = render.HexToNRGBA(0x4caf50, 1)
	colorText         = render.HexToNRGBA(0x222222, 1)
	colorBanner       = render.HexToNRGBA(0x000000, .75)
)

// StrokeSource represents a input device to provide strokes.
type StrokeSource interface {
	Position() (int, int)
	IsJustReleased() bool
}

// MouseStrokeSource is a StrokeSource implementation of mouse.
type MouseStrokeSource struct{}

func (m *MouseStrokeSource) Position() (int, int) {
	return ebiten.CursorPosition()
}

func (m *MouseStrokeSource) IsJustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

// TouchStrokeSource is a StrokeSource implementation of touch.
type TouchStrokeSource struct {
	ID int
}

func (t *TouchStrokeSource) Position() (int, int) {
	return ebiten.TouchPosition(t.ID)
}

func (t *TouchStrokeSource) IsJustReleased() bool {
	return inpututil.IsTouchJustReleased(t.ID)
}

// Stroke follows one press until it is released or turns into a drag.
type Stroke struct {
	source StrokeSource

	initX, initY       int
	currentX, currentY int

	released bool
	// dragged strokes end without a tap
	dragged bool
}

func NewStroke(source StrokeSource) *Stroke {
	cx, cy := source.Position()
	return &Stroke{
		source:   source,
		initX:    cx,
		initY:    cy,
		currentX: cx,
		currentY: cy,
	}
}

func (s *Stroke) Update() {
	if s.released {
		return
	}
	if s.source.IsJustReleased() {
		s.released = true
		return
	}
	s.currentX, s.currentY = s.source.Position()
}

func (s *Stroke) IsReleased() bool {
	return s.released
}

func (s *Stroke) PositionDiff() (int, int) {
	return s.currentX - s.initX, s.currentY - s.initY
}

type GameState int

const (
	READY GameState = iota + 1
	WAITING
	ANIMATING
)

func (s GameState) Name() string {
	switch s {
	case READY:
		return "READY"
	case WAITING:
		return "WAITING"
	case ANIMATING:
		return "ANIMATING"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

// hit is one clickable box of the side panel.
type hit struct {
	box   *Nine
	label string
	press func()
	// active marks a mode button whose mode is on
	active func() bool
}

type Game struct {
	ctl      *app.Controller
	faces    Faces
	cellSize int
	strokes  map[*Stroke]struct{}
	Tweens   map[*gween.Tween]Action

	dot        *ebiten.Image
	surface    *ebiten.Image
	rows, cols int
	hits       []*hit
	banner     *Nine
	bannerText string
	bannerFade *gween.Tween
	glow       float64
}

func NewGame(ctl *app.Controller, faces Faces, cellSize int) (*Game, error) {
	dot, err := newDot()
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctl:      ctl,
		faces:    faces,
		cellSize: cellSize,
		strokes:  map[*Stroke]struct{}{},
		Tweens:   make(map[*gween.Tween]Action),
		dot:      dot,
		banner:   NewNine(dot, .2),
		glow:     1,
	}
	g.layoutPanel()
	g.pulse()
	if err := g.resize(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) State() GameState {
	switch {
	case g.ctl.Waiting():
		return WAITING
	case g.ctl.Animating():
		return ANIMATING
	default:
		return READY
	}
}

// Size is the window size the current board needs.
func (g *Game) Size() (int, int) {
	b := g.ctl.Board().Grid
	w := b.Cols*g.cellSize + panelWidth
	h := b.Rows * g.cellSize
	if need := g.panelHeight(); h < need {
		h = need
	}
	return w, h
}

func (g *Game) panelHeight() int {
	last := g.hits[len(g.hits)-1]
	return int(last.box.y+last.box.height) + 8*margin
}

func (g *Game) boardWidth() int {
	return g.ctl.Board().Grid.Cols * g.cellSize
}

// resize reallocates the board surface after the grid changed dimensions.
func (g *Game) resize() error {
	grid := g.ctl.Board().Grid
	if g.surface != nil && grid.Rows == g.rows && grid.Cols == g.cols {
		return nil
	}
	surface, err := ebiten.NewImage(grid.Cols*g.cellSize, grid.Rows*g.cellSize, ebiten.FilterDefault)
	if err != nil {
		return err
	}
	if g.surface != nil {
		_ = g.surface.Dispose()
		ebiten.SetScreenSize(g.Size())
	}
	g.surface = surface
	g.rows, g.cols = grid.Rows, grid.Cols
	g.layoutPanel()
	return nil
}

func (g *Game) layoutPanel() {
	x := float64(g.boardWidth() + margin)
	y := float64(margin)
	place := func(h *hit) {
		h.box.SetPosition(x, y)
		h.box.SetSize(panelWidth-2*margin, buttonHeight)
		y += buttonHeight + buttonGap
	}
	if g.hits != nil {
		for _, h := range g.hits {
			place(h)
		}
		return
	}
	for _, b := range app.Buttons(g.ctl.Variant()) {
		b := b
		h := &hit{box: NewNine(g.dot, .2), label: b.Name(), press: func() { g.ctl.Press(b) }}
		if m, ok := b.Mode(); ok {
			h.active = func() bool { return g.ctl.Mode() == m }
		}
		g.hits = append(g.hits, h)
		place(h)
	}
	slots := 1
	if g.ctl.Variant() == editor.Race {
		slots = 2
	}
	for slot := 0; slot < slots; slot++ {
		slot := slot
		h := &hit{box: NewNine(g.dot, .2), press: func() { g.ctl.CycleAlgorithm(slot) }}
		g.hits = append(g.hits, h)
		place(h)
	}
}

// algorithmLabel is the text of the selector rows after the buttons.
func (g *Game) algorithmLabel(i int) string {
	slot := i - len(app.Buttons(g.ctl.Variant()))
	a := g.ctl.Algorithm(slot)
	if g.ctl.Variant() == editor.Race {
		return fmt.Sprintf("Agent %d: %s", slot+1, a.Label)
	}
	return "Algorithm: " + a.Label
}

func (g *Game) keys() {
	shortcuts := map[ebiten.Key]app.Button{
		ebiten.KeyG:      app.Generate,
		ebiten.KeyC:      app.Clear,
		ebiten.KeyW:      app.EditWalls,
		ebiten.KeyK:      app.PlaceCoins,
		ebiten.KeyEscape: app.Reset,
	}
	if g.ctl.Variant() == editor.Race {
		shortcuts[ebiten.Key1] = app.SetStart1
		shortcuts[ebiten.Key2] = app.SetStart2
		shortcuts[ebiten.Key3] = app.SetGoal
		shortcuts[ebiten.KeyR] = app.StartRace
	} else {
		shortcuts[ebiten.KeyP] = app.SetPoints
		shortcuts[ebiten.KeyR] = app.Run
	}
	for k, b := range shortcuts {
		if inpututil.IsKeyJustPressed(k) {
			g.ctl.Press(b)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.ctl.CycleAlgorithm(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) && g.ctl.Variant() == editor.Race {
		g.ctl.CycleAlgorithm(1)
	}
}

func (g *Game) updateStroke(stroke *Stroke) {
	stroke.Update()
	xDif, yDif := stroke.PositionDiff()
	half := float64(g.cellSize) / 2
	if math.Abs(float64(xDif)) > half || math.Abs(float64(yDif)) > half {
		stroke.dragged = true
		stroke.released = true
	}
	if !stroke.IsReleased() || stroke.dragged {
		return
	}
	g.tap(float64(stroke.initX), float64(stroke.initY))
}

func (g *Game) tap(x, y float64) {
	if x < float64(g.boardWidth()) {
		w, h := g.surface.Size()
		g.ctl.Click(x, y, editor.Viewport{
			DisplayW: float64(w), DisplayH: float64(h),
			LogicalW: w, LogicalH: h,
			CellSize: g.cellSize,
		})
		return
	}
	for _, h := range g.hits {
		if h.box.Contains(x, y) {
			h.press()
			return
		}
	}
}

func (g *Game) update(screen *ebiten.Image) error {
	g.updateTweens()
	g.keys()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.strokes[NewStroke(&MouseStrokeSource{})] = struct{}{}
	}
	for _, id := range inpututil.JustPressedTouchIDs() {
		g.strokes[NewStroke(&TouchStrokeSource{id})] = struct{}{}
	}
	for s := range g.strokes {
		g.updateStroke(s)
		if s.IsReleased() {
			delete(g.strokes, s)
		}
	}

	g.ctl.Update()
	if banner := g.ctl.Banner(); banner != g.bannerText {
		g.bannerText = banner
		if banner != "" {
			g.fadeInBanner()
		}
	}
	if err := g.resize(); err != nil {
		log.Errorf("resize: %v", err)
		return err
	}

	if ebiten.IsDrawingSkipped() {
		return nil
	}
	g.draw(screen)
	return nil
}

func (g *Game) draw(screen *ebiten.Image) {
	if e := screen.Fill(colorPanel); e != nil {
		log.Printf("%v", e)
	}
	f := g.ctl.Frame()
	f.Glow = g.glow
	render.Render(&screenCanvas{dst: g.surface, dot: g.dot}, f)
	_ = screen.DrawImage(g.surface, &ebiten.DrawImageOptions{})

	buttons := len(app.Buttons(g.ctl.Variant()))
	for i, h := range g.hits {
		clr := colorButton
		if h.active != nil && h.active() {
			clr = colorButtonActive
		}
		h.box.Draw(screen, clr)
		label := h.label
		if i >= buttons {
			label = g.algorithmLabel(i)
		}
		text.Draw(screen, label, g.faces.Small, int(h.box.x)+margin, int(h.box.y)+buttonHeight-9, colorText)
	}

	last := g.hits[len(g.hits)-1]
	y := int(last.box.y+last.box.height) + 2*margin
	for _, line := range wrap(g.ctl.Status(), g.faces.Small, panelWidth-2*margin) {
		text.Draw(screen, line, g.faces.Small, g.boardWidth()+margin, y, colorText)
		y += 18
	}

	if g.bannerText != "" {
		g.drawBanner(screen)
	}
	_, h := g.Size()
	ebitenutil.DebugPrintAt(screen, g.State().Name(), g.boardWidth()+margin, h-16)
}

func (g *Game) drawBanner(screen *ebiten.Image) {
	w := font.MeasureString(g.faces.Large, g.bannerText).Ceil() + 4*margin
	h := 56
	bw, bh := g.surface.Size()
	x := float64(bw-w) / 2
	y := float64(bh-h) / 2
	g.banner.SetPosition(x, y)
	g.banner.SetSize(float64(w), float64(h))
	g.banner.Draw(screen, colorBanner)
	alpha := g.banner.alpha
	text.Draw(screen, g.bannerText, g.faces.Large, int(x)+2*margin, int(y)+38,
		color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: uint8(alpha * 0xff)})
}

// wrap breaks s into lines no wider than width when drawn with face.
func wrap(s string, face font.Face, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		next := word
		if line != "" {
			next = line + " " + word
		}
		if line != "" && font.MeasureString(face, next).Ceil() > width {
			lines = append(lines, line)
			next = word
		}
		line = next
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func main() {
	g, err := Load(os.Args)
	if err != nil {
		log.Fatal(err)
	}
	w, h := g.Size()
	title := "Maze Pathfinding"
	if g.ctl.Variant() == editor.Race {
		title = "Maze Race"
	}
	if err := ebiten.Run(g.update, w, h, 1, title); err != nil {
		log.Fatal(err)
	}
}
