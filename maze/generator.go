// Package maze builds race boards: spanning-tree carving, exit and tile
// seeding, shortest paths and start positions.
package maze

import (
	"github.com/zucenko/mazerace/model"
)

// Rand is the random source used for carving and shuffling.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Quota asks for Count tiles of one kind.
type Quota struct {
	Tile  model.Tile
	Count int
}

// ClassicQuotas is the one-shot placement used when tiles never respawn.
func ClassicQuotas() []Quota {
	return []Quota{
		{Tile: model.BOOST, Count: 2},
		{Tile: model.SLOW, Count: 2},
		{Tile: model.LIGHTNING, Count: 1},
		{Tile: model.FREEZE, Count: 2},
		{Tile: model.REVERSE, Count: 1},
	}
}

// DynamicQuotas seeds the first wave of a board whose tiles respawn.
func DynamicQuotas() []Quota {
	return []Quota{
		{Tile: model.BOOST, Count: 3},
		{Tile: model.SLOW, Count: 2},
		{Tile: model.LIGHTNING, Count: 2},
		{Tile: model.FREEZE, Count: 2},
		{Tile: model.REVERSE, Count: 1},
	}
}

type Config struct {
	Width, Height int

	// Specials enables tile and portal seeding.
	Specials bool
	Quotas   []Quota
	// StartZone keeps tiles out of the StartZone x StartZone box at the origin.
	// Zero disables the exclusion.
	StartZone int
}

// Placement records one seeded special tile.
type Placement struct {
	Pos  model.Pos
	Tile model.Tile
}

type Result struct {
	Grid             *model.Grid
	Exit             model.Pos
	PortalA, PortalB *model.Pos
	// Placements lists the non-portal tiles seeded on the board.
	Placements []Placement
	// Carves counts the room-to-room connections opened by the carver.
	Carves int
}

var carveDirs = [4]model.Pos{{X: 0, Y: -2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0}}

// Generate carves a perfect maze, opens the exit at (width-2, height-2)
// and seeds special tiles when enabled.
func Generate(cfg Config, rng Rand) *Result {
	grid := model.NewGrid(cfg.Width, cfg.Height, model.WALL)
	carves := Carve(grid, model.Pos{X: 1, Y: 1}, rng)

	exit := model.Pos{X: cfg.Width - 2, Y: cfg.Height - 2}
	grid.Set(exit, model.PATH)

	res := &Result{Grid: grid, Exit: exit, Carves: carves}
	if cfg.Specials {
		res.Placements, res.PortalA, res.PortalB = Seed(grid, exit, cfg.Quotas, cfg.StartZone, rng)
	}
	return res
}

// Carve runs the recursive backtracker from start over odd "room" cells,
// stepping two cells at a time so a wall stays between unconnected rooms.
func Carve(grid *model.Grid, start model.Pos, rng Rand) int {
	if !grid.InBound(start) {
		return 0
	}
	stack := []model.Pos{start}
	grid.Set(start, model.PATH)
	carves := 0

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		dirs := carveDirs
		for i := len(dirs) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			dirs[i], dirs[j] = dirs[j], dirs[i]
		}

		found := false
		for _, d := range dirs {
			next := model.Pos{X: curr.X + d.X, Y: curr.Y + d.Y}
			if next.X <= 0 || next.X >= grid.Width-1 || next.Y <= 0 || next.Y >= grid.Height-1 {
				continue
			}
			if grid.At(next) != model.WALL {
				continue
			}
			grid.Set(model.Pos{X: curr.X + d.X/2, Y: curr.Y + d.Y/2}, model.PATH)
			grid.Set(next, model.PATH)
			stack = append(stack, next)
			carves++
			found = true
			break
		}
		if !found {
			stack = stack[:len(stack)-1]
		}
	}
	return carves
}

// PathCells lists interior PATH cells other than the exit, skipping the
// zone x zone box at the origin.
func PathCells(grid *model.Grid, exit model.Pos, zone int) []model.Pos {
	cells := make([]model.Pos, 0)
	for y := 1; y < grid.Height-1; y++ {
		for x := 1; x < grid.Width-1; x++ {
			p := model.Pos{X: x, Y: y}
			if grid.At(p) != model.PATH || p == exit {
				continue
			}
			if zone > 0 && x < zone && y < zone {
				continue
			}
			cells = append(cells, p)
		}
	}
	return cells
}

// Shuffle is an in-place Fisher-Yates shuffle.
func Shuffle(cells []model.Pos, rng Rand) {
	for i := len(cells) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cells[i], cells[j] = cells[j], cells[i]
	}
}

// Seed fills shuffled PATH cells quota by quota, then turns the next two
// cells into the portal pair. Quotas that do not fit are silently
// under-filled and the portals are skipped when fewer than two cells remain.
func Seed(grid *model.Grid, exit model.Pos, quotas []Quota, zone int, rng Rand) ([]Placement, *model.Pos, *model.Pos) {
	cells := PathCells(grid, exit, zone)
	Shuffle(cells, rng)

	placements := make([]Placement, 0)
	idx := 0
	for _, q := range quotas {
		for i := 0; i < q.Count && idx < len(cells); i, idx = i+1, idx+1 {
			grid.Set(cells[idx], q.Tile)
			placements = append(placements, Placement{Pos: cells[idx], Tile: q.Tile})
		}
	}

	if idx+1 >= len(cells) {
		return placements, nil, nil
	}
	a, b := cells[idx], cells[idx+1]
	grid.Set(a, model.PORTAL_A)
	grid.Set(b, model.PORTAL_B)
	return placements, &a, &b
}
