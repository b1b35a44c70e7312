package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/zucenko/mazerace/audio"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/race"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	PANEL_WIDTH   = 260
	HUD_HEIGHT    = 44
	MAX_CELL      = 24
	MIN_CELL      = 6
	MAX_BOARD     = 720
	DOT_SIZE      = 65
	PARTICLE_LIFE = .6
	BEATS         = 3
	BEAT          = time.Second
	SETTLE        = 500 * time.Millisecond
	VOLUME        = 0.5
)

var errQuit = errors.New("quit")

func HexToF32(u uint32) GameColor {
	b := float64(0xff&u) / 255
	g := float64(0xff&(u>>8)) / 255
	r := float64(0xff&(u>>16)) / 255
	return GameColor{r, g, b}
}

// ParseHex reads "#rrggbb"; anything else is white.
func ParseHex(s string) GameColor {
	u, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return HexToF32(0xffffff)
	}
	return HexToF32(uint32(u))
}

type GameColor struct {
	r float64
	g float64
	b float64
}

func (c GameColor) RGBA(alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(c.r * alpha * 255),
		G: uint8(c.g * alpha * 255),
		B: uint8(c.b * alpha * 255),
		A: uint8(alpha * 255),
	}
}

var COLOR_BG = HexToF32(0x1e272e)
var COLOR_TRACK = HexToF32(0x485460)
var COLOR_FOG = HexToF32(0x0b0f12)
var COLOR_WHITE = HexToF32(0xffffff)

type GameState int

const (
	COUNTDOWN GameState = iota + 1
	RACING
	GAME_OVER
)

func (s GameState) Name() string {
	switch s {
	case COUNTDOWN:
		return "COUNTDOWN"
	case RACING:
		return "RACING"
	case GAME_OVER:
		return "GAME_OVER"
	default:
		return fmt.Sprintf("N/A(%d)", s)
	}
}

type Particle struct {
	x, y  float64
	color GameColor
	life  float64
}

type Banner struct {
	image *ebiten.Image
	scale float64
	alpha float64
}

// Viewer plays a race in a window. It is the render and visual sink of the
// session and ticks it once per frame.
type Viewer struct {
	State   GameState
	Session *race.Session
	Sound   *audio.SoundManager
	Tweens  map[*gween.Tween]*Action

	cell      int
	dot       *ebiten.Image
	hud, big  font.Face
	overall   *Bar
	bars      []*Bar
	particles map[*Particle]struct{}
	banner    *Banner
	beats     int
	nextBeat  time.Time
	lastFrame time.Time
	results   []string

	mu      sync.Mutex
	snap    *model.Snapshot
	pending []func()
}

func loadFace(size float64) font.Face {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatal(err)
	}
	return truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func NewViewer(width, height int, sound *audio.SoundManager) *Viewer {
	cell := MAX_BOARD / max(width, height)
	cell = max(MIN_CELL, min(MAX_CELL, cell))
	dot := newDot(DOT_SIZE)
	return &Viewer{
		State:     COUNTDOWN,
		Sound:     sound,
		Tweens:    make(map[*gween.Tween]*Action),
		cell:      cell,
		dot:       dot,
		hud:       loadFace(18),
		big:       loadFace(72),
		overall:   NewBar(dot, ParseHex(model.COLOR_EXIT)),
		particles: make(map[*Particle]struct{}),
		beats:     BEATS,
	}
}

// attach binds the session and lays out one progress bar per player.
func (v *Viewer) attach(s *race.Session) {
	v.Session = s
	v.snap = s.Snapshot()
	boardW := v.snap.Grid.Width * v.cell
	v.overall.SetBox(110, 14, max(boardW-120, 40), 16)
	for i, p := range v.snap.Players {
		bar := NewBar(v.dot, ParseHex(p.ColorHex()))
		bar.SetBox(boardW+16, HUD_HEIGHT+i*44+24, PANEL_WIDTH-32, 10)
		v.bars = append(v.bars, bar)
	}
}

func (v *Viewer) screenSize() (int, int) {
	w := v.snap.Grid.Width*v.cell + PANEL_WIDTH
	h := max(v.snap.Grid.Height*v.cell, len(v.snap.Players)*44+240) + HUD_HEIGHT
	return w, h
}

func (v *Viewer) Present(snap *model.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snap = snap
}

// Burst and Banner may arrive from the spawner goroutine; the work is
// queued for the next frame.
func (v *Viewer) Burst(at model.Pos, tile model.Tile, count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, func() { v.spawnParticles(at, tile, count) })
}

func (v *Viewer) Banner(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, func() { v.showBanner(text) })
}

func (v *Viewer) flush() *model.Snapshot {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	snap := v.snap
	v.mu.Unlock()
	for _, f := range pending {
		f()
	}
	return snap
}

func (v *Viewer) step(now time.Time) {
	switch v.State {
	case COUNTDOWN:
		if now.Before(v.nextBeat) {
			return
		}
		switch {
		case v.beats > 0:
			v.Session.Cue(model.CUE_COUNTDOWN)
			v.Session.Announce(strconv.Itoa(v.beats))
			v.beats--
			v.nextBeat = now.Add(BEAT)
		case v.beats == 0:
			v.Session.Cue(model.CUE_START)
			v.Session.Announce("GO!")
			v.beats--
			v.nextBeat = now.Add(SETTLE)
		default:
			v.Session.Start(now)
			v.State = RACING
		}
	case RACING:
		if res := v.Session.Tick(now); !res.Running {
			v.State = GAME_OVER
			export := race.Export(v.Session.Results(), v.Session.Summary())
			v.results = strings.Split(strings.TrimRight(export, "\n"), "\n")
			log.Infof("viewer: race over\n%s", export)
		}
	}
}

func (v *Viewer) update(screen *ebiten.Image) error {
	now := time.Now()
	if v.lastFrame.IsZero() {
		v.lastFrame = now
	}
	dt := float32(math.Min(now.Sub(v.lastFrame).Seconds(), .1))
	v.lastFrame = now

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		v.Sound.SetMuted(!v.Sound.Muted())
	}

	v.step(now)
	snap := v.flush()
	v.updateTweens(dt)

	if ebiten.IsDrawingSkipped() {
		return nil
	}
	if e := screen.Fill(COLOR_BG.RGBA(1)); e != nil {
		log.Printf("%v", e)
	}
	v.drawBoard(screen, snap)
	v.drawHud(screen, snap)
	v.drawPanel(screen, snap)
	v.drawEffects(screen)
	if v.State == GAME_OVER {
		v.drawResults(screen)
	}
	return nil
}

// cellXY is the top left pixel of a board cell.
func (v *Viewer) cellXY(x, y float64) (float64, float64) {
	return x * float64(v.cell), y*float64(v.cell) + HUD_HEIGHT
}

func (v *Viewer) drawDot(screen *ebiten.Image, cx, cy, diameter float64, c GameColor, alpha float64) {
	op := &ebiten.DrawImageOptions{}
	s := diameter / DOT_SIZE
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(cx-diameter/2, cy-diameter/2)
	op.ColorM.Scale(c.r, c.g, c.b, alpha)
	screen.DrawImage(v.dot, op)
}

func (v *Viewer) drawBoard(screen *ebiten.Image, snap *model.Snapshot) {
	size := float64(v.cell)
	path := ParseHex(model.PATH.Color())
	for y := 0; y < snap.Grid.Height; y++ {
		for x := 0; x < snap.Grid.Width; x++ {
			p := model.Pos{X: x, Y: y}
			px, py := v.cellXY(float64(x), float64(y))
			if !snap.Visible(p) {
				ebitenutil.DrawRect(screen, px, py, size, size, COLOR_FOG.RGBA(1))
				continue
			}
			t := snap.Grid.At(p)
			switch {
			case p == snap.Exit:
				ebitenutil.DrawRect(screen, px, py, size, size, ParseHex(model.COLOR_EXIT).RGBA(1))
			case t == model.WALL:
				ebitenutil.DrawRect(screen, px, py, size, size, ParseHex(t.Color()).RGBA(1))
			default:
				ebitenutil.DrawRect(screen, px, py, size, size, path.RGBA(.12))
				if t.Special() {
					v.drawDot(screen, px+size/2, py+size/2, size*.7, ParseHex(t.Color()), 1)
				}
			}
		}
	}

	for _, p := range snap.Players {
		c := ParseHex(p.ColorHex())
		for _, at := range p.Visited {
			if !snap.Visible(at) {
				continue
			}
			px, py := v.cellXY(float64(at.X), float64(at.Y))
			v.drawDot(screen, px+size/2, py+size/2, size*.25, c, .5)
		}
	}
	for _, p := range snap.Players {
		px, py := v.cellXY(p.Render.X, p.Render.Y)
		if p.Frozen {
			v.drawDot(screen, px+size/2, py+size/2, size*1.1, ParseHex(model.FREEZE.Color()), .8)
		}
		alpha := 1.0
		if p.Stranded {
			alpha = .4
		}
		v.drawDot(screen, px+size/2, py+size/2, size*.8, ParseHex(p.ColorHex()), alpha)
	}
}

func (v *Viewer) drawHud(screen *ebiten.Image, snap *model.Snapshot) {
	text.Draw(screen, fmt.Sprintf("%.1fs", snap.Elapsed.Seconds()), v.hud, 10, 28, color.White)
	v.overall.Draw(screen, snap.Progress)
	ebitenutil.DebugPrintAt(screen, v.State.Name(), snap.Grid.Width*v.cell+16, 8)
}

func (v *Viewer) drawPanel(screen *ebiten.Image, snap *model.Snapshot) {
	x := snap.Grid.Width*v.cell + 16
	for i, p := range snap.Players {
		y := HUD_HEIGHT + i*44
		label := p.Name
		switch {
		case p.Finished:
			label += fmt.Sprintf("  %.2fs", p.FinishTime.Seconds())
		case p.Stranded:
			label += "  stranded"
		case p.Frozen:
			label += "  frozen"
		}
		text.Draw(screen, label, v.hud, x, y+18, ParseHex(p.ColorHex()).RGBA(1))
		if i < len(v.bars) {
			v.bars[i].Draw(screen, p.Progress())
		}
	}
	y := HUD_HEIGHT + len(snap.Players)*44 + 12
	for i, e := range snap.Log {
		if i >= 12 {
			break
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5.1fs %s", e.At, e.Message), x, y+i*16)
	}
}

func (v *Viewer) drawEffects(screen *ebiten.Image) {
	for p := range v.particles {
		v.drawDot(screen, p.x, p.y, float64(v.cell)*.3, p.color, p.life)
	}
	if b := v.banner; b != nil && b.scale > 0 {
		w, h := b.image.Size()
		sw, sh := screen.Size()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
		op.GeoM.Scale(b.scale, b.scale)
		op.GeoM.Translate(float64(sw-PANEL_WIDTH)/2, float64(sh)/2)
		op.ColorM.Scale(1, 1, 1, b.alpha)
		screen.DrawImage(b.image, op)
	}
}

func (v *Viewer) drawResults(screen *ebiten.Image) {
	sw, sh := screen.Size()
	boxH := float64(len(v.results)*24 + 30)
	ebitenutil.DrawRect(screen, 20, float64(sh)/2-boxH/2, float64(sw-PANEL_WIDTH-40), boxH, COLOR_BG.RGBA(.9))
	for i, line := range v.results {
		text.Draw(screen, line, v.hud, 40, sh/2-int(boxH/2)+30+i*24, color.White)
	}
}

func (v *Viewer) spawnParticles(at model.Pos, tile model.Tile, count int) {
	c := ParseHex(tile.Color())
	if tile == model.PATH {
		c = ParseHex(model.COLOR_EXIT)
	}
	size := float64(v.cell)
	cx, cy := v.cellXY(float64(at.X), float64(at.Y))
	cx, cy = cx+size/2, cy+size/2
	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + rand.Float64()*.4
		reach := size * (1 + rand.Float64()*1.5)
		p := &Particle{x: cx, y: cy, color: c, life: 1}
		v.particles[p] = struct{}{}
		v.tween(PARTICLE_LIFE, ease.OutQuad, func(t float32) {
			p.x = cx + math.Cos(angle)*reach*float64(t)
			p.y = cy + math.Sin(angle)*reach*float64(t)
			p.life = 1 - float64(t)
		}).addOnFinish(func() {
			delete(v.particles, p)
		})
	}
}

func (v *Viewer) showBanner(s string) {
	b := &Banner{image: prepareTextImage(s, v.big), alpha: 1}
	v.banner = b
	grow := v.tween(.25, ease.OutBack, func(t float32) { b.scale = float64(t) })
	hold := grow.next(gween.New(0, 1, .4, ease.Linear), nil)
	hold.next(gween.New(1, 0, .3, ease.InQuad), func(t float32) { b.alpha = float64(t) }).
		addOnFinish(func() {
			if v.banner == b {
				v.banner = nil
			}
		})
}

func prepareTextImage(s string, face font.Face) *ebiten.Image {
	w := font.MeasureString(face, s).Ceil() + 20
	h := face.Metrics().Height.Ceil() + 20
	image, _ := ebiten.NewImage(w, h, ebiten.FilterLinear)
	text.Draw(image, s, face, 10, face.Metrics().Ascent.Ceil()+10, color.White)
	return image
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyLogLevel()
	opts, err := cfg.RaceOptions()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sound := audio.NewSoundManager(VOLUME)
	if cfg.Sound {
		_ = sound.Initialize()
	}
	defer sound.Cleanup()

	viewer := NewViewer(opts.Width, opts.Height, sound)
	session, err := race.New(opts, race.Sinks{Render: viewer, Audio: sound, Visual: viewer}, cfg.Rand())
	if err != nil {
		log.Fatalf("race: %v", err)
	}
	defer session.Stop()
	viewer.attach(session)

	w, h := viewer.screenSize()
	if err := ebiten.Run(viewer.update, w, h, 1, "Maze Race"); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
	if viewer.State == GAME_OVER {
		fmt.Print(race.Export(session.Results(), session.Summary()))
	}
}
