package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten"
)

// Nine stretches a source image into a box of any size: corners keep
// their size, edges stretch along one axis and the middle along both.
type Nine struct {
	images *ebiten.Image
	alpha  float64
	Scale  float64
	// cuts are the slice borders in the source, shared by both axes
	cuts [4]int

	x, y, width, height float64
	targetX, targetY    [4]float64
}

// NewNine slices a dotSize disc, which turns it into a rounded box whose
// corner radius is half the disc times scale.
func NewNine(dot *ebiten.Image, scale float64) *Nine {
	return &Nine{
		images: dot,
		alpha:  1,
		Scale:  scale,
		cuts:   [4]int{0, dotSize / 2, dotSize/2 + 1, dotSize},
	}
}

func (n *Nine) SetPosition(x, y float64) {
	n.x = x
	n.y = y
	n.SetSize(n.width, n.height)
}

func (n *Nine) SetSize(width, height float64) {
	n.width = width
	n.height = height
	n.targetX = n.edges(n.x, width)
	n.targetY = n.edges(n.y, height)
}

func (n *Nine) edges(from, length float64) [4]float64 {
	return [4]float64{
		from,
		from + n.Scale*float64(n.cuts[1]-n.cuts[0]),
		from + length - n.Scale*float64(n.cuts[3]-n.cuts[2]),
		from + length,
	}
}

// Contains reports whether a point falls inside the box.
func (n *Nine) Contains(x, y float64) bool {
	return x >= n.x && x < n.x+n.width && y >= n.y && y < n.y+n.height
}

func (n *Nine) Draw(screen *ebiten.Image, clr color.Color) {
	c := color.NRGBAModel.Convert(clr).(color.NRGBA)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			srcW := float64(n.cuts[i+1] - n.cuts[i])
			srcH := float64(n.cuts[j+1] - n.cuts[j])
			dstW := n.targetX[i+1] - n.targetX[i]
			dstH := n.targetY[j+1] - n.targetY[j]
			if dstW <= 0 || dstH <= 0 {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(dstW/srcW, dstH/srcH)
			op.GeoM.Translate(n.targetX[i], n.targetY[j])
			op.ColorM.Scale(float64(c.R)/0xff, float64(c.G)/0xff, float64(c.B)/0xff, float64(c.A)/0xff*n.alpha)
			part := n.images.SubImage(image.Rect(n.cuts[i], n.cuts[j], n.cuts[i+1], n.cuts[j+1])).(*ebiten.Image)
			_ = screen.DrawImage(part, op)
		}
	}
}
