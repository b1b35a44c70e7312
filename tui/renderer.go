// Package tui draws a race on a terminal with tcell.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/zucenko/mazerace/model"
)

const (
	CELL_WIDTH  = 2
	PANEL_GAP   = 3
	LOG_LINES   = 10
	FLASH_TIME  = 400 * time.Millisecond
	BANNER_TIME = 900 * time.Millisecond
	// bursts at least this big light up the neighbors too
	WIDE_BURST = 25
)

var (
	STYLE_TEXT   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	STYLE_DIM    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	STYLE_FOG    = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	STYLE_BANNER = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite).Bold(true)
)

var glyphs = map[model.Tile]rune{
	model.PATH:      ' ',
	model.WALL:      '█',
	model.BOOST:     '»',
	model.SLOW:      '«',
	model.PORTAL_A:  'A',
	model.PORTAL_B:  'B',
	model.LIGHTNING: '!',
	model.FREEZE:    '*',
	model.REVERSE:   '<',
}

const (
	GLYPH_EXIT  = 'X'
	GLYPH_FOG   = '░'
	GLYPH_TRAIL = '·'
)

type flash struct {
	at    model.Pos
	color tcell.Color
	until time.Time
}

// Renderer keeps the last snapshot and redraws it with any live flashes and
// banner. It satisfies the render and visual sinks of a race session.
type Renderer struct {
	mu          sync.Mutex
	screen      tcell.Screen
	buf         *buffer
	last        *model.Snapshot
	flashes     []flash
	banner      string
	bannerUntil time.Time
	overlay     []string
	frames      int
	Clock       func() time.Time
}

func NewRenderer(screen tcell.Screen) *Renderer {
	w, h := screen.Size()
	return &Renderer{
		screen: screen,
		buf:    newBuffer(w, h),
		Clock:  time.Now,
	}
}

func (r *Renderer) Present(snap *model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = snap
	r.draw()
}

func (r *Renderer) Burst(at model.Pos, tile model.Tile, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	color := tcell.GetColor(tile.Color())
	if tile == model.PATH {
		color = tcell.GetColor(model.COLOR_EXIT)
	}
	until := r.Clock().Add(FLASH_TIME)
	r.flashes = append(r.flashes, flash{at: at, color: color, until: until})
	if count >= WIDE_BURST {
		for _, d := range model.Directions {
			r.flashes = append(r.flashes, flash{at: model.Pos{X: at.X + d.X, Y: at.Y + d.Y}, color: color, until: until})
		}
	}
}

// Banner shows text over the board for a moment. It redraws immediately so
// banners appear even while no frames flow, e.g. during the countdown.
func (r *Renderer) Banner(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banner = text
	r.bannerUntil = r.Clock().Add(BANNER_TIME)
	r.draw()
}

// Overlay pins a text box over the board until cleared with an empty text.
func (r *Renderer) Overlay(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = nil
	if text != "" {
		r.overlay = strings.Split(strings.TrimRight(text, "\n"), "\n")
	}
	r.draw()
}

// Redraw repaints the last snapshot, e.g. after a terminal resize.
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw()
}

func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Renderer) draw() {
	if w, h := r.screen.Size(); w != r.buf.width || h != r.buf.height {
		r.buf.resize(w, h)
	}
	r.buf.clear()
	now := r.Clock()

	if r.last != nil {
		r.drawStatus(r.last)
		r.drawBoard(r.last, now)
		r.drawPanel(r.last)
	}
	if r.banner != "" && now.Before(r.bannerUntil) {
		r.drawBanner(r.banner)
	}
	if len(r.overlay) > 0 {
		r.drawOverlay(r.overlay)
	}
	r.buf.flush(r.screen)
	r.frames++
}

func (r *Renderer) drawStatus(snap *model.Snapshot) {
	state := "RACING"
	if !snap.Running {
		state = "READY"
		if len(snap.Finish) > 0 {
			state = "FINISHED"
		}
	}
	status := fmt.Sprintf("MAZE RACE  %s  %.1fs  progress %3.0f%%", state, snap.Elapsed.Seconds(), snap.Progress*100)
	r.buf.text(0, 0, status, STYLE_TEXT)
}

// boardOrigin is the screen cell of grid position (0,0).
func boardOrigin() (int, int) {
	return 0, 1
}

func (r *Renderer) drawBoard(snap *model.Snapshot, now time.Time) {
	ox, oy := boardOrigin()
	for y := 0; y < snap.Grid.Height; y++ {
		for x := 0; x < snap.Grid.Width; x++ {
			p := model.Pos{X: x, Y: y}
			glyph, style := cellLook(snap, p)
			r.buf.set(ox+x*CELL_WIDTH, oy+y, glyph, style)
			fill := ' '
			if glyph == glyphs[model.WALL] || glyph == GLYPH_FOG {
				fill = glyph
			}
			r.buf.set(ox+x*CELL_WIDTH+1, oy+y, fill, style)
		}
	}

	for i := range snap.Players {
		p := &snap.Players[i]
		style := tcell.StyleDefault.Foreground(tcell.GetColor(p.ColorHex()))
		for _, v := range p.Visited {
			if snap.Grid.At(v) == model.PATH && v != snap.Exit && snap.Visible(v) {
				r.buf.set(ox+v.X*CELL_WIDTH, oy+v.Y, GLYPH_TRAIL, style)
			}
		}
	}

	live := r.flashes[:0]
	for _, f := range r.flashes {
		if now.After(f.until) {
			continue
		}
		live = append(live, f)
		if !snap.Grid.InBound(f.at) {
			continue
		}
		for dx := 0; dx < CELL_WIDTH; dx++ {
			c := r.buf.get(ox+f.at.X*CELL_WIDTH+dx, oy+f.at.Y)
			r.buf.set(ox+f.at.X*CELL_WIDTH+dx, oy+f.at.Y, c.r, c.style.Background(f.color))
		}
	}
	r.flashes = live

	for i := range snap.Players {
		p := &snap.Players[i]
		at := p.Render.Cell()
		r.buf.set(ox+at.X*CELL_WIDTH, oy+at.Y, PlayerGlyph(p), PlayerStyle(p))
	}
}

// cellLook picks the glyph and style of one board cell.
func cellLook(snap *model.Snapshot, p model.Pos) (rune, tcell.Style) {
	if !snap.Visible(p) {
		return GLYPH_FOG, STYLE_FOG
	}
	if p == snap.Exit {
		return GLYPH_EXIT, TileStyle(model.PATH).Foreground(tcell.GetColor(model.COLOR_EXIT)).Bold(true)
	}
	t := snap.Grid.At(p)
	return glyphs[t], TileStyle(t)
}

// TileStyle is the style a tile is drawn with.
func TileStyle(t model.Tile) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.GetColor(t.Color()))
}

// PlayerGlyph is the seat number, 1 based.
func PlayerGlyph(p *model.Player) rune {
	return rune('1' + p.Color%9)
}

func PlayerStyle(p *model.Player) tcell.Style {
	bg := tcell.GetColor(p.ColorHex())
	if p.Frozen {
		bg = tcell.GetColor(model.FREEZE.Color())
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(bg).Bold(true)
	if p.Stranded {
		style = style.Dim(true)
	}
	return style
}

// PlayerState is the short label shown next to a player in the side panel.
func PlayerState(p *model.Player, finish []model.FinishEntry) string {
	switch {
	case p.Finished:
		for _, f := range finish {
			if f.Player.Color == p.Color {
				return fmt.Sprintf("#%d %.2fs", f.Order, f.Player.FinishTime.Seconds())
			}
		}
		return "done"
	case p.Stranded:
		return "stranded"
	case p.Frozen:
		return "frozen"
	case p.SpeedMultiplier > 1:
		return "fast"
	case p.SpeedMultiplier < 1:
		return "slow"
	}
	return fmt.Sprintf("%3.0f%%", p.Progress()*100)
}

func (r *Renderer) drawPanel(snap *model.Snapshot) {
	ox, oy := boardOrigin()
	x := ox + snap.Grid.Width*CELL_WIDTH + PANEL_GAP
	y := oy
	for i := range snap.Players {
		p := &snap.Players[i]
		r.buf.set(x, y, PlayerGlyph(p), PlayerStyle(p))
		col := r.buf.text(x+2, y, p.Name, tcell.StyleDefault.Foreground(tcell.GetColor(p.ColorHex())))
		r.buf.text(col+1, y, PlayerState(p, snap.Finish), STYLE_DIM)
		y++
	}

	y++
	r.buf.text(x, y, "Events", STYLE_TEXT.Underline(true))
	y++
	for i, e := range snap.Log {
		if i >= LOG_LINES {
			break
		}
		r.buf.text(x, y, fmt.Sprintf("%5.1fs %s", e.At, e.Message), STYLE_DIM)
		y++
	}
}

func (r *Renderer) drawBanner(text string) {
	line := " " + text + " "
	w := len([]rune(line))
	x := (r.buf.width - w) / 2
	y := r.buf.height / 2
	if r.last != nil {
		ox, oy := boardOrigin()
		x = ox + (r.last.Grid.Width*CELL_WIDTH-w)/2
		y = oy + r.last.Grid.Height/2
	}
	r.buf.text(max(x, 0), y, line, STYLE_BANNER)
}

func (r *Renderer) drawOverlay(lines []string) {
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l)))
	}
	x := max((r.buf.width-w-4)/2, 0)
	y := max((r.buf.height-len(lines)-2)/2, 0)
	blank := strings.Repeat(" ", w+4)
	r.buf.text(x, y, blank, STYLE_BANNER)
	for i, l := range lines {
		r.buf.text(x, y+1+i, "  "+l+strings.Repeat(" ", w-len([]rune(l))+2), STYLE_BANNER)
	}
	r.buf.text(x, y+1+len(lines), blank, STYLE_BANNER)
}
