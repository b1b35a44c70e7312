package race

import (
	"fmt"
	"time"

	"github.com/zucenko/mazerace/model"
)

// particle counts per burst
const (
	SPEED_PARTICLES     = 15
	LIGHTNING_PARTICLES = 25
	SETBACK_PARTICLES   = 20
	PORTAL_PARTICLES    = 15
)

// resolve applies the tile under the racer. Everything but the portals is
// consumed and reverts to PATH; LIGHTNING and REVERSE clear their own cell
// before moving the racer away from it.
func (s *Session) resolve(p *model.Player, now time.Time) {
	at := p.Pos
	tile := s.grid.At(at)
	t := s.opts.Tuning

	var e event
	switch tile {
	case model.PATH, model.WALL:
		return
	case model.BOOST:
		p.SpeedMultiplier = t.BoostMultiplier
		p.SpeedEffectUntil = now.Add(t.SpeedWindow)
		s.consume(at)
		e = tileEvent(tile, fmt.Sprintf("%s got a boost!", p.Name), burst{at: at, tile: tile, count: SPEED_PARTICLES})
	case model.SLOW:
		p.SpeedMultiplier = t.SlowMultiplier
		p.SpeedEffectUntil = now.Add(t.SpeedWindow)
		s.consume(at)
		e = tileEvent(tile, fmt.Sprintf("%s slowed down!", p.Name), burst{at: at, tile: tile, count: SPEED_PARTICLES})
	case model.LIGHTNING:
		s.consume(at)
		if jump := min(t.LightningJump, p.Remaining()); jump > 0 {
			p.PathIndex += jump
			p.Snap(p.Path[p.PathIndex])
			p.Visited = append(p.Visited, p.Pos)
			s.reveal(p.Pos, REVEAL_LIGHTNING)
		}
		e = tileEvent(tile, fmt.Sprintf("%s rode the lightning!", p.Name), burst{at: at, tile: tile, count: LIGHTNING_PARTICLES})
	case model.FREEZE:
		p.Frozen = true
		p.FrozenUntil = now.Add(t.FreezeDuration)
		s.consume(at)
		e = tileEvent(tile, fmt.Sprintf("%s is frozen!", p.Name), burst{at: at, tile: tile, count: SETBACK_PARTICLES})
	case model.REVERSE:
		s.consume(at)
		if back := min(t.ReverseJump, p.PathIndex); back > 0 {
			p.PathIndex -= back
			p.Snap(p.Path[p.PathIndex])
		}
		e = tileEvent(tile, fmt.Sprintf("%s was pushed back!", p.Name), burst{at: at, tile: tile, count: SETBACK_PARTICLES})
	case model.PORTAL_A, model.PORTAL_B:
		partner := s.partner(tile)
		if partner == nil {
			s.log.Debugf("%s stepped on %s at %v without a partner", p.Name, tile.Name(), at)
			return
		}
		to := *partner
		p.Snap(to)
		s.reveal(to, REVEAL_PORTAL)
		e = tileEvent(tile, fmt.Sprintf("%s took a portal!", p.Name),
			burst{at: at, tile: tile, count: PORTAL_PARTICLES},
			burst{at: to, tile: tile, count: PORTAL_PARTICLES})
	}

	s.stats.Increment(tile)
	s.emit(now, e)
	s.log.Debugf("%s triggered %s at %v, path index %d", p.Name, tile.Name(), at, p.PathIndex)
}

func tileEvent(tile model.Tile, message string, bursts ...burst) event {
	cue, _ := model.TileCue(tile)
	return event{
		cue:    cue,
		entry:  model.LogEntry{Kind: EventKind(tile), Message: message},
		bursts: bursts,
		stat:   tile,
	}
}

// EventKind is the log tag of a tile effect.
func EventKind(tile model.Tile) string {
	if tile.Portal() {
		return "portal"
	}
	cue, ok := model.TileCue(tile)
	if !ok {
		return ""
	}
	return cue.Name()
}

// consume turns a one-shot tile back into PATH and forgets it as a spawned tile.
func (s *Session) consume(at model.Pos) {
	s.grid.Set(at, model.PATH)
	delete(s.dynamic, at)
}

// partner looks the other portal up at resolution time, so a relocated
// portal is always followed to its current cell.
func (s *Session) partner(tile model.Tile) *model.Pos {
	switch tile {
	case model.PORTAL_A:
		return s.portalB
	case model.PORTAL_B:
		return s.portalA
	}
	return nil
}
