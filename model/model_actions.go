package model

import "time"

// Directions are the four axis steps, in N, E, S, W order.
var Directions = [4]Pos{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// NewGrid makes a width x height grid filled with fill.
func NewGrid(width, height int, fill Tile) *Grid {
	cells := make([][]Tile, height)
	for y := range cells {
		cells[y] = make([]Tile, width)
		for x := range cells[y] {
			cells[y][x] = fill
		}
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

func (g *Grid) InBound(p Pos) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// At returns the tile at p; out of bounds reads as WALL.
func (g *Grid) At(p Pos) Tile {
	if !g.InBound(p) {
		return WALL
	}
	return g.Cells[p.Y][p.X]
}

func (g *Grid) Set(p Pos, t Tile) {
	if g.InBound(p) {
		g.Cells[p.Y][p.X] = t
	}
}

func (g *Grid) Passable(p Pos) bool {
	return g.At(p) != WALL
}

// Neighbors returns the in-bound, passable 4-neighbors of p.
func (g *Grid) Neighbors(p Pos) []Pos {
	result := make([]Pos, 0, 4)
	for _, d := range Directions {
		n := Pos{X: p.X + d.X, Y: p.Y + d.Y}
		if g.Passable(n) {
			result = append(result, n)
		}
	}
	return result
}

// Count returns how many cells hold t.
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if c == t {
				n++
			}
		}
	}
	return n
}

func (g *Grid) Clone() *Grid {
	cells := make([][]Tile, len(g.Cells))
	for y, row := range g.Cells {
		cells[y] = append([]Tile(nil), row...)
	}
	return &Grid{Width: g.Width, Height: g.Height, Cells: cells}
}

// NewPlayer creates a racer parked at the origin with a neutral speed.
func NewPlayer(name string, color int) *Player {
	return &Player{Name: name, Color: color, SpeedMultiplier: 1}
}

// Place puts the player on p and restarts its trail there.
func (p *Player) Place(at Pos) {
	p.Pos = at
	p.Render = VecOf(at)
	p.Visited = []Pos{at}
}

// Snap moves the player to at without animation.
func (p *Player) Snap(at Pos) {
	p.Pos = at
	p.Render = VecOf(at)
}

// Remaining is the number of path steps left before the exit.
func (p *Player) Remaining() int {
	if len(p.Path) == 0 {
		return 0
	}
	return len(p.Path) - 1 - p.PathIndex
}

// Progress is the fraction of the path already covered.
func (p *Player) Progress() float64 {
	if p.Finished {
		return 1
	}
	steps := len(p.Path) - 1
	if steps < 1 {
		steps = 1
	}
	return float64(p.PathIndex) / float64(steps)
}

// Clone copies the player so later mutation of p cannot leak into the copy.
func (p *Player) Clone() Player {
	c := *p
	c.Path = append([]Pos(nil), p.Path...)
	c.Visited = append([]Pos(nil), p.Visited...)
	return c
}

// ColorHex returns the palette color for the player.
func (p *Player) ColorHex() string {
	return COLORS[p.Color%len(COLORS)]
}

// SpeedActive reports whether a timed speed effect is still running at now.
func (p *Player) SpeedActive(now time.Time) bool {
	return !p.SpeedEffectUntil.IsZero() && !now.After(p.SpeedEffectUntil)
}

// Increment bumps the counter that belongs to the tile kind.
func (s *Stats) Increment(t Tile) {
	switch t {
	case BOOST:
		s.Boosts++
	case SLOW:
		s.Slows++
	case PORTAL_A, PORTAL_B:
		s.Portals++
	case LIGHTNING:
		s.Lightnings++
	case FREEZE:
		s.Freezes++
	case REVERSE:
		s.Reverses++
	case PATH, WALL:
	}
}

// Total is the number of tile effects triggered.
func (s Stats) Total() int {
	return s.Boosts + s.Slows + s.Portals + s.Lightnings + s.Freezes + s.Reverses
}

// Setbacks counts the effects that cost a racer time or ground.
func (s Stats) Setbacks() int {
	return s.Reverses + s.Freezes
}
