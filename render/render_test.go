package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zucenko/mazerace/model"
)

type op struct {
	kind  string
	x, y  float64
	color color.Color
}

type recorder struct{ ops []op }

func (r *recorder) Clear(bg color.Color) { r.ops = append(r.ops, op{kind: "clear", color: bg}) }
func (r *recorder) Line(x1, y1, _, _ float64, clr color.Color) {
	r.ops = append(r.ops, op{kind: "line", x: x1, y: y1, color: clr})
}
func (r *recorder) Rect(x, y, _, _ float64, clr color.Color) {
	r.ops = append(r.ops, op{kind: "rect", x: x, y: y, color: clr})
}
func (r *recorder) Disc(cx, cy, _ float64, clr color.Color, _ float64) {
	r.ops = append(r.ops, op{kind: "disc", x: cx, y: cy, color: clr})
}

// layer names each op by what it paints so the order can be compared.
func layers(ops []op) []string {
	out := make([]string, 0)
	for _, o := range ops {
		name := o.kind
		switch {
		case o.kind == "rect" && o.color == ColorWall:
			name = "wall"
		case o.kind == "rect" && (o.color == ColorStart1 || o.color == ColorStart2 || o.color == ColorGoal):
			name = "point"
		case o.kind == "rect":
			name = "overlay"
		case o.kind == "disc":
			name = "coin"
		}
		if len(out) == 0 || out[len(out)-1] != name {
			out = append(out, name)
		}
	}
	return out
}

func raceBoard(t *testing.T) *model.Board {
	b := model.NewEmptyBoard(6, 6)
	require.True(t, b.ToggleWall(model.Cell{Row: 2, Col: 2}))
	require.True(t, b.ToggleCoin(model.Cell{Row: 3, Col: 3}))
	require.True(t, b.SetPoint(model.Start1, model.Cell{Row: 1, Col: 1}))
	require.True(t, b.SetPoint(model.Start2, model.Cell{Row: 1, Col: 4}))
	require.True(t, b.SetPoint(model.Goal, model.Cell{Row: 4, Col: 4}))
	return b
}

func TestRenderLayerOrder(t *testing.T) {
	f := Frame{
		Board:    raceBoard(t),
		CellSize: 20,
		Overlays: []Overlay{
			{Cells: []model.Cell{{Row: 1, Col: 1}, {Row: 1, Col: 2}}, Color: AgentColors[0]},
			{Cells: []model.Cell{{Row: 1, Col: 4}}, Color: AgentColors[1]},
		},
	}
	rec := &recorder{}
	Render(rec, f)
	assert.Equal(t, []string{"clear", "line", "wall", "coin", "point", "overlay"}, layers(rec.ops))

	lines := 0
	for _, o := range rec.ops {
		if o.kind == "line" {
			lines++
		}
	}
	assert.Equal(t, 7+7, lines)
}

func TestRenderIsDeterministic(t *testing.T) {
	f := Frame{Board: raceBoard(t), CellSize: 10, Overlays: []Overlay{{Cells: []model.Cell{{Row: 3, Col: 1}}, Color: ColorVisited, Inset: 2}}}
	a, b := &recorder{}, &recorder{}
	Render(a, f)
	Render(b, f)
	assert.Equal(t, a.ops, b.ops)
}

func TestRenderOverlayInset(t *testing.T) {
	b := model.NewEmptyBoard(4, 4)
	rec := &recorder{}
	Render(rec, Frame{Board: b, CellSize: 20, Overlays: []Overlay{{Cells: []model.Cell{{Row: 1, Col: 2}}, Color: ColorVisited, Inset: 4}}})
	last := rec.ops[len(rec.ops)-1]
	assert.Equal(t, op{kind: "rect", x: 44, y: 24, color: ColorVisited}, last)
}

func TestRenderWithoutBoardOnlyClears(t *testing.T) {
	rec := &recorder{}
	Render(rec, Frame{CellSize: 20})
	assert.Len(t, rec.ops, 1)
}

func TestHexToNRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 128}, HexToNRGBA(0x4caf50, 0.5))
}
