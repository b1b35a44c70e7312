package tui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

// corridor is a 7x3 board with an open middle row and a boost at x=3.
func corridor() *model.Snapshot {
	grid := model.NewGrid(7, 3, model.WALL)
	for x := 1; x < 6; x++ {
		grid.Set(model.Pos{X: x, Y: 1}, model.PATH)
	}
	grid.Set(model.Pos{X: 3, Y: 1}, model.BOOST)

	a := model.NewPlayer("Ann", 0)
	a.Place(model.Pos{X: 1, Y: 1})
	b := model.NewPlayer("Bob", 1)
	b.Place(model.Pos{X: 2, Y: 1})
	b.Frozen = true

	return &model.Snapshot{
		Elapsed:  1500 * time.Millisecond,
		Running:  true,
		Grid:     grid,
		Exit:     model.Pos{X: 5, Y: 1},
		Players:  []model.Player{*a, *b},
		Progress: 0.25,
		Log:      []model.LogEntry{{At: 1.2, Kind: "boost", Message: "Ann hit a boost"}},
	}
}

func TestRendererDrawsBoard(t *testing.T) {
	r := NewRenderer(newScreen(t))
	r.Present(corridor())
	ox, oy := boardOrigin()

	assert.Equal(t, '█', r.buf.get(ox, oy).r)
	assert.Equal(t, '█', r.buf.get(ox+1, oy).r)

	boost := r.buf.get(ox+3*CELL_WIDTH, oy+1)
	assert.Equal(t, '»', boost.r)
	assert.Equal(t, TileStyle(model.BOOST), boost.style)

	assert.Equal(t, GLYPH_EXIT, r.buf.get(ox+5*CELL_WIDTH, oy+1).r)

	ann := r.buf.get(ox+1*CELL_WIDTH, oy+1)
	assert.Equal(t, '1', ann.r)
	bob := r.buf.get(ox+2*CELL_WIDTH, oy+1)
	assert.Equal(t, '2', bob.r)
	frozen := corridor().Players[1]
	assert.Equal(t, PlayerStyle(&frozen), bob.style)

	assert.Equal(t, 1, r.Frames())
}

func TestRendererStatusAndPanel(t *testing.T) {
	r := NewRenderer(newScreen(t))
	r.Present(corridor())

	assert.Equal(t, "MAZE RACE  RACING  1.5s  progress  25%", row(r, 0, 0, 38))

	x := 7*CELL_WIDTH + PANEL_GAP
	assert.Equal(t, "Ann", row(r, x+2, 1, 3))
	assert.Equal(t, "Bob frozen", row(r, x+2, 2, 10))
	assert.Equal(t, "Events", row(r, x, 4, 6))
	assert.Equal(t, "  1.2s Ann hit a boost", row(r, x, 5, 22))
}

func TestRendererFog(t *testing.T) {
	snap := corridor()
	snap.Fog = true
	snap.Revealed = make([][]bool, 3)
	for y := range snap.Revealed {
		snap.Revealed[y] = make([]bool, 7)
	}
	snap.Revealed[1][1] = true

	r := NewRenderer(newScreen(t))
	r.Present(snap)
	ox, oy := boardOrigin()

	assert.Equal(t, GLYPH_FOG, r.buf.get(ox+3*CELL_WIDTH, oy+1).r)
	assert.Equal(t, GLYPH_FOG, r.buf.get(ox+5*CELL_WIDTH, oy+1).r)
	// players are always drawn
	assert.Equal(t, '2', r.buf.get(ox+2*CELL_WIDTH, oy+1).r)
}

func TestRendererTrail(t *testing.T) {
	snap := corridor()
	snap.Players[0].Visited = []model.Pos{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}}
	snap.Players = snap.Players[:1]

	r := NewRenderer(newScreen(t))
	r.Present(snap)
	ox, oy := boardOrigin()

	assert.Equal(t, GLYPH_TRAIL, r.buf.get(ox+2*CELL_WIDTH, oy+1).r)
	// special tiles keep their glyph
	assert.Equal(t, '»', r.buf.get(ox+3*CELL_WIDTH, oy+1).r)
	assert.Equal(t, GLYPH_TRAIL, r.buf.get(ox+4*CELL_WIDTH, oy+1).r)
}

func TestRendererBurstExpires(t *testing.T) {
	now := time.Unix(100, 0)
	r := NewRenderer(newScreen(t))
	r.Clock = func() time.Time { return now }
	ox, oy := boardOrigin()

	r.Burst(model.Pos{X: 3, Y: 1}, model.LIGHTNING, WIDE_BURST)
	assert.Len(t, r.flashes, 5)
	r.Present(corridor())
	lit := r.buf.get(ox+3*CELL_WIDTH, oy+1)
	assert.Equal(t, '»', lit.r)
	assert.Equal(t, TileStyle(model.BOOST).Background(tcell.GetColor(model.LIGHTNING.Color())), lit.style)

	now = now.Add(FLASH_TIME + time.Millisecond)
	r.Present(corridor())
	assert.Empty(t, r.flashes)
	assert.Equal(t, TileStyle(model.BOOST), r.buf.get(ox+3*CELL_WIDTH, oy+1).style)
}

func TestRendererBanner(t *testing.T) {
	now := time.Unix(100, 0)
	r := NewRenderer(newScreen(t))
	r.Clock = func() time.Time { return now }

	// without a snapshot the banner is centered on the screen
	r.Banner("3")
	assert.Equal(t, " 3 ", row(r, 38, 12, 3))
	assert.Equal(t, 1, r.Frames())

	r.Present(corridor())
	r.Banner("GO!")
	ox, oy := boardOrigin()
	assert.Equal(t, " GO! ", row(r, ox+(7*CELL_WIDTH-5)/2, oy+1, 5))

	now = now.Add(BANNER_TIME + time.Millisecond)
	r.Redraw()
	assert.NotContains(t, row(r, 0, oy+1, 20), "GO!")
}

func TestRendererOverlay(t *testing.T) {
	r := NewRenderer(newScreen(t))
	r.Present(corridor())
	r.Overlay("Results\nAnn 1.0s\n")
	require.Len(t, r.overlay, 2)
	assert.Contains(t, row(r, 0, 11, 80), "Results")
	assert.Contains(t, row(r, 0, 12, 80), "Ann 1.0s")

	r.Overlay("")
	assert.Nil(t, r.overlay)
	assert.NotContains(t, row(r, 0, 11, 80), "Results")
}

func TestPlayerState(t *testing.T) {
	p := model.NewPlayer("Ann", 2)
	p.Path = []model.Pos{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}}
	p.PathIndex = 2
	assert.Equal(t, " 50%", PlayerState(p, nil))

	p.SpeedMultiplier = 2
	assert.Equal(t, "fast", PlayerState(p, nil))
	p.SpeedMultiplier = 0.5
	assert.Equal(t, "slow", PlayerState(p, nil))
	p.Frozen = true
	assert.Equal(t, "frozen", PlayerState(p, nil))

	p.Finished = true
	p.FinishTime = 3250 * time.Millisecond
	finish := []model.FinishEntry{{Player: *p, Order: 2}}
	assert.Equal(t, "#2 3.25s", PlayerState(p, finish))
	assert.Equal(t, "done", PlayerState(p, nil))
}

func TestRendererResizes(t *testing.T) {
	screen := newScreen(t)
	r := NewRenderer(screen)
	screen.SetSize(120, 30)
	r.Present(corridor())
	assert.Equal(t, 120, r.buf.width)
	assert.Equal(t, 30, r.buf.height)
}

func row(r *Renderer, x, y, n int) string {
	out := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.buf.get(x+i, y).r)
	}
	return string(out)
}
