package main

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten"
	log "github.com/sirupsen/logrus"
)

// Nine stretches a nine-slice image over a box: corners keep their scale,
// edges and center stretch.
type Nine struct {
	images              *ebiten.Image
	alpha               float64
	R, G, B, Scale      float64
	positions           [4][2]int
	x, y, width, height int
	targetPositions     [4][2]float64
}

// NewRoundNine slices a circle so the box gets fully rounded ends.
func NewRoundNine(dot *ebiten.Image, scale float64) *Nine {
	w, _ := dot.Size()
	r := w / 2
	return &Nine{
		images:    dot,
		alpha:     1,
		R:         1, G: 1, B: 1, Scale: scale,
		positions: [4][2]int{{0, 0}, {r, r}, {r + 1, r + 1}, {w, w}},
	}
}

func (n *Nine) SetColor(c GameColor, alpha float64) {
	n.R, n.G, n.B = c.r, c.g, c.b
	n.alpha = alpha
}

func (n *Nine) SetBox(x, y, width, height int) {
	n.x, n.y = x, y
	n.width, n.height = width, height
	for axis, size := range [2]int{width, height} {
		origin := float64(x)
		if axis == 1 {
			origin = float64(y)
		}
		end := origin + float64(size)
		head := origin + n.Scale*float64(n.positions[1][axis])
		tail := end - n.Scale*float64(n.positions[3][axis]-n.positions[2][axis])
		if tail < head {
			mid := (head + tail) / 2
			head, tail = mid, mid
		}
		n.targetPositions[0][axis] = origin
		n.targetPositions[1][axis] = head
		n.targetPositions[2][axis] = tail
		n.targetPositions[3][axis] = end
	}
}

func (n *Nine) Draw(screen *ebiten.Image) {
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			srcW := n.positions[col+1][0] - n.positions[col][0]
			srcH := n.positions[row+1][1] - n.positions[row][1]
			dstW := n.targetPositions[col+1][0] - n.targetPositions[col][0]
			dstH := n.targetPositions[row+1][1] - n.targetPositions[row][1]
			if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
				continue
			}
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(dstW/float64(srcW), dstH/float64(srcH))
			op.GeoM.Translate(n.targetPositions[col][0], n.targetPositions[row][1])
			op.ColorM.Scale(n.R, n.G, n.B, n.alpha)
			rect := image.Rect(n.positions[col][0], n.positions[row][1], n.positions[col+1][0], n.positions[row+1][1])
			screen.DrawImage(n.images.SubImage(rect).(*ebiten.Image), op)
		}
	}
}

// Bar is a rounded progress bar: a dim track with a colored fill.
type Bar struct {
	track, fill         *Nine
	x, y, width, height int
}

func NewBar(dot *ebiten.Image, c GameColor) *Bar {
	b := &Bar{track: NewRoundNine(dot, 1), fill: NewRoundNine(dot, 1)}
	b.track.SetColor(COLOR_TRACK, .6)
	b.fill.SetColor(c, 1)
	return b
}

func (b *Bar) SetBox(x, y, width, height int) {
	b.x, b.y, b.width, b.height = x, y, width, height
	// corners scale with the bar height
	w, _ := b.track.images.Size()
	b.track.Scale = float64(height) / float64(w)
	b.fill.Scale = b.track.Scale
	b.track.SetBox(x, y, width, height)
}

func (b *Bar) Draw(screen *ebiten.Image, progress float64) {
	b.track.Draw(screen)
	progress = math.Max(0, math.Min(1, progress))
	if progress == 0 {
		return
	}
	fillW := int(math.Max(float64(b.height), progress*float64(b.width)))
	b.fill.SetBox(b.x, b.y, fillW, b.height)
	b.fill.Draw(screen)
}

// newDot renders an antialiased white disc of the given diameter.
func newDot(diameter int) *ebiten.Image {
	img := image.NewNRGBA(image.Rect(0, 0, diameter, diameter))
	r := float64(diameter) / 2
	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			d := math.Hypot(float64(x)+.5-r, float64(y)+.5-r)
			a := math.Max(0, math.Min(1, r-d))
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a * 255)})
		}
	}
	dot, err := ebiten.NewImageFromImage(img, ebiten.FilterLinear)
	if err != nil {
		log.Fatalf("dot image: %v", err)
	}
	return dot
}
