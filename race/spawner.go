package race

import (
	"context"
	"fmt"
	"time"

	"github.com/zucenko/mazerace/maze"
	"github.com/zucenko/mazerace/model"
)

// SpawnKinds are the tiles a respawn wave draws from. Portals never respawn.
var SpawnKinds = []model.Tile{model.BOOST, model.SLOW, model.LIGHTNING, model.FREEZE, model.REVERSE}

func (s *Session) spawnLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.Dynamic.Interval)
	defer ticker.Stop()
	s.log.Debugf("tile spawner running every %v", s.opts.Dynamic.Interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("tile spawner stopped")
			return
		case now := <-ticker.C:
			s.Spawn(now)
		}
	}
}

// Spawn runs one respawn wave: the previous wave is cleared, then a random
// number of random tiles lands on free PATH cells. Cells under a racer are
// skipped. Returns the number of tiles placed; a stopped or finished race
// places nothing.
func (s *Session) Spawn(now time.Time) int {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return 0
	}

	for pos := range s.dynamic {
		if !s.grid.At(pos).Portal() {
			s.grid.Set(pos, model.PATH)
		}
	}
	clear(s.dynamic)

	occupied := make(map[model.Pos]struct{}, len(s.players))
	for _, p := range s.players {
		occupied[p.Render.Cell()] = struct{}{}
	}
	cells := make([]model.Pos, 0)
	for _, c := range maze.PathCells(s.grid, s.exit, 0) {
		if _, ok := occupied[c]; !ok {
			cells = append(cells, c)
		}
	}
	maze.Shuffle(cells, s.rng)

	lo, hi := max(s.opts.Dynamic.Min, 0), s.opts.Dynamic.Max
	if hi < lo {
		hi = lo
	}
	count := lo + s.rng.Intn(hi-lo+1)

	placed := 0
	for ; placed < count && placed < len(cells); placed++ {
		kind := SpawnKinds[s.rng.Intn(len(SpawnKinds))]
		s.grid.Set(cells[placed], kind)
		s.dynamic[cells[placed]] = kind
	}

	s.emit(now, event{
		cue: model.CUE_SPAWN,
		entry: model.LogEntry{
			Kind:    "spawn",
			Message: fmt.Sprintf("%d new tiles appeared!", placed),
		},
		banner: "NEW TILES!",
	})
	events := s.drain()
	s.mu.Unlock()

	s.deliver(events)
	s.log.Debugf("spawn wave placed %d tiles", placed)
	return placed
}

// Spawned lists the cells of the current wave and their tiles.
func (s *Session) Spawned() map[model.Pos]model.Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.Pos]model.Tile, len(s.dynamic))
	for p, t := range s.dynamic {
		out[p] = t
	}
	return out
}
