package tui

import "github.com/gdamore/tcell/v2"

type cell struct {
	r     rune
	style tcell.Style
}

// buffer is an off-screen frame, flushed to the terminal in one pass.
type buffer struct {
	cells  []cell
	width  int
	height int
}

func newBuffer(width, height int) *buffer {
	b := &buffer{}
	b.resize(width, height)
	return b
}

// resize adjusts dimensions, reallocating only when capacity is insufficient.
func (b *buffer) resize(width, height int) {
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width, b.height = width, height
	b.clear()
}

func (b *buffer) clear() {
	for i := range b.cells {
		b.cells[i] = cell{r: ' ', style: tcell.StyleDefault}
	}
}

func (b *buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *buffer) set(x, y int, r rune, style tcell.Style) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = cell{r: r, style: style}
}

func (b *buffer) get(x, y int) cell {
	if !b.inBounds(x, y) {
		return cell{}
	}
	return b.cells[y*b.width+x]
}

// text writes s from (x, y) and returns the column after the last rune.
func (b *buffer) text(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		b.set(x, y, r, style)
		x++
	}
	return x
}

func (b *buffer) flush(screen tcell.Screen) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.cells[y*b.width+x]
			screen.SetContent(x, y, c.r, nil, c.style)
		}
	}
	screen.Show()
}
