package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
)

// dotSize is the side of the generated disc. Its middle row and column
// are the stretchable part when the disc backs a Nine.
const dotSize = 113

// newDot renders an antialiased white disc.
func newDot() (*ebiten.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, dotSize, dotSize))
	c := float64(dotSize) / 2
	for y := 0; y < dotSize; y++ {
		for x := 0; x < dotSize; x++ {
			d := math.Hypot(float64(x)+.5-c, float64(y)+.5-c)
			a := math.Max(0, math.Min(1, c-d))
			v := uint8(a * 0xff)
			img.SetRGBA(x, y, color.RGBA{v, v, v, v})
		}
	}
	return ebiten.NewImageFromImage(img, ebiten.FilterLinear)
}

// screenCanvas draws render output onto an ebiten image.
type screenCanvas struct {
	dst *ebiten.Image
	dot *ebiten.Image
}

func (c *screenCanvas) Clear(bg color.Color) {
	_ = c.dst.Fill(bg)
}

func (c *screenCanvas) Line(x1, y1, x2, y2 float64, clr color.Color) {
	ebitenutil.DrawLine(c.dst, x1, y1, x2, y2, clr)
}

func (c *screenCanvas) Rect(x, y, w, h float64, clr color.Color) {
	ebitenutil.DrawRect(c.dst, x, y, w, h, clr)
}

// Disc draws a filled circle, with a faint halo of radius glow behind it
// when glow is larger than r.
func (c *screenCanvas) Disc(cx, cy, r float64, clr color.Color, glow float64) {
	if glow > r {
		c.circle(cx, cy, glow, clr, .3)
	}
	c.circle(cx, cy, r, clr, 1)
}

func (c *screenCanvas) circle(cx, cy, r float64, clr color.Color, alpha float64) {
	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2*r/dotSize, 2*r/dotSize)
	op.GeoM.Translate(cx-r, cy-r)
	op.ColorM.Scale(float64(n.R)/0xff, float64(n.G)/0xff, float64(n.B)/0xff, float64(n.A)/0xff*alpha)
	_ = c.dst.DrawImage(c.dot, op)
}
