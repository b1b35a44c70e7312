package model

import (
	"fmt"
	"time"
)

// Tile is the content code of a single grid cell.
type Tile int

const (
	PATH Tile = iota
	WALL
	BOOST
	SLOW
	PORTAL_A
	PORTAL_B
	LIGHTNING
	FREEZE
	REVERSE
)

// Tiles lists every tile code in declaration order.
var Tiles = []Tile{PATH, WALL, BOOST, SLOW, PORTAL_A, PORTAL_B, LIGHTNING, FREEZE, REVERSE}

func (t Tile) Name() string {
	switch t {
	case PATH:
		return "PATH"
	case WALL:
		return "WALL"
	case BOOST:
		return "BOOST"
	case SLOW:
		return "SLOW"
	case PORTAL_A:
		return "PORTAL_A"
	case PORTAL_B:
		return "PORTAL_B"
	case LIGHTNING:
		return "LIGHTNING"
	case FREEZE:
		return "FREEZE"
	case REVERSE:
		return "REVERSE"
	default:
		return fmt.Sprintf("N/A(%d)", t)
	}
}

func (t Tile) String() string {
	return t.Name()
}

// Special reports whether stepping on the tile triggers an effect.
func (t Tile) Special() bool {
	return t != PATH && t != WALL
}

// Portal reports whether the tile is one end of the portal pair.
func (t Tile) Portal() bool {
	return t == PORTAL_A || t == PORTAL_B
}

type Pos struct {
	X, Y int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Adjacent reports whether q is exactly one axis step away from p.
func (p Pos) Adjacent(q Pos) bool {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx+dy*dy == 1
}

// Vec is a continuous position used for move interpolation.
type Vec struct {
	X, Y float64
}

func VecOf(p Pos) Vec {
	return Vec{X: float64(p.X), Y: float64(p.Y)}
}

// Cell rounds the vector to the nearest grid cell.
func (v Vec) Cell() Pos {
	return Pos{X: int(v.X + .5), Y: int(v.Y + .5)}
}

// Grid is a row-major matrix of tiles, Cells[y][x].
type Grid struct {
	Width, Height int
	Cells         [][]Tile
}

type Player struct {
	Name  string
	Color int

	Pos       Pos
	Render    Vec
	Path      []Pos
	PathIndex int
	Visited   []Pos

	Frozen      bool
	FrozenUntil time.Time

	SpeedMultiplier  float64
	SpeedEffectUntil time.Time

	Animating bool
	AnimFrom  Pos
	AnimTo    Pos
	AnimStart time.Time
	LastMove  time.Time

	Finished   bool
	FinishTime time.Duration
	// Stranded players have no route to the exit and never move.
	Stranded bool
}

// FinishEntry is the frozen record of a player crossing the exit.
type FinishEntry struct {
	Player Player
	Color  string
	Order  int
}

// Stats counts triggered tile effects for one session.
type Stats struct {
	Boosts     int
	Slows      int
	Portals    int
	Lightnings int
	Freezes    int
	Reverses   int
}

// COLORS is the player palette, indexed by Player.Color.
var COLORS = []string{
	"#ff6b6b", "#feca57", "#48dbfb", "#ff9ff3",
	"#1dd1a1", "#5f27cd", "#ff9f43", "#00d2d3",
}

const COLOR_EXIT = "#2ecc71"

// TILE_COLORS paints the board. Tiles missing here have no accent.
var TILE_COLORS = map[Tile]string{
	WALL:      "#2c3e50",
	PATH:      "#ecf0f1",
	BOOST:     "#27ae60",
	SLOW:      "#9b59b6",
	PORTAL_A:  "#3498db",
	PORTAL_B:  "#3498db",
	LIGHTNING: "#f1c40f",
	FREEZE:    "#00cec9",
	REVERSE:   "#e74c3c",
}

// Color returns the hex color of the tile.
func (t Tile) Color() string {
	if c, ok := TILE_COLORS[t]; ok {
		return c
	}
	return TILE_COLORS[PATH]
}
