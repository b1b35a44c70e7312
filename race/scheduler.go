package race

import (
	"fmt"
	"time"

	"github.com/tanema/gween/ease"
	"github.com/zucenko/mazerace/model"
)

const FIREWORK_PARTICLES = 30

// effective is the per-step duration under the current speed multiplier.
func (s *Session) effective(p *model.Player) time.Duration {
	if p.SpeedMultiplier <= 0 {
		return s.opts.MoveDuration
	}
	return time.Duration(float64(s.opts.MoveDuration) / p.SpeedMultiplier)
}

// advance runs one tick for a racer that is neither finished nor stranded.
// Each racer keeps its own cadence anchor in LastMove: a step starts once a
// full effective duration has passed since the previous one and the previous
// animation is done.
func (s *Session) advance(p *model.Player, now time.Time) {
	if p.Frozen && now.After(p.FrozenUntil) {
		p.Frozen = false
		p.LastMove = now
	}
	if p.Frozen {
		return
	}
	if !p.SpeedEffectUntil.IsZero() && now.After(p.SpeedEffectUntil) {
		p.SpeedMultiplier = 1
		p.SpeedEffectUntil = time.Time{}
	}

	step := s.effective(p)
	if !p.Animating && p.PathIndex < len(p.Path)-1 && now.Sub(p.LastMove) >= step {
		p.PathIndex++
		p.Animating = true
		p.AnimFrom = p.Pos
		p.AnimTo = p.Path[p.PathIndex]
		p.AnimStart = now
		p.LastMove = now
	}

	if p.Animating {
		s.animate(p, now, step)
	}
}

func (s *Session) animate(p *model.Player, now time.Time, duration time.Duration) {
	spent := now.Sub(p.AnimStart)
	if spent < duration {
		f := float64(ease.InOutCubic(float32(spent), 0, 1, float32(duration)))
		from, to := model.VecOf(p.AnimFrom), model.VecOf(p.AnimTo)
		p.Render = model.Vec{
			X: from.X + (to.X-from.X)*f,
			Y: from.Y + (to.Y-from.Y)*f,
		}
		return
	}
	s.commit(p, now)
}

// commit lands the racer on its animation target and applies whatever the
// cell holds.
func (s *Session) commit(p *model.Player, now time.Time) {
	p.Animating = false
	p.Snap(p.AnimTo)
	p.Visited = append(p.Visited, p.Pos)
	s.reveal(p.Pos, REVEAL_STEP)

	s.resolve(p, now)

	if p.Pos == s.exit {
		s.finishPlayer(p, now)
	}
}

func (s *Session) finishPlayer(p *model.Player, now time.Time) {
	p.Finished = true
	p.Animating = false
	p.FinishTime = now.Sub(s.startAt)

	order := len(s.finish) + 1
	s.finish = append(s.finish, model.FinishEntry{Player: p.Clone(), Color: p.ColorHex(), Order: order})

	cue := model.CUE_FINISH
	if order == 1 {
		cue = model.CUE_FINISH_FIRST
	}
	s.emit(now, event{
		cue: cue,
		entry: model.LogEntry{
			Kind:    "finish",
			Message: fmt.Sprintf("%s reached the exit! (#%d)", p.Name, order),
		},
		bursts: []burst{
			{at: p.Pos, tile: model.PATH, count: FIREWORK_PARTICLES},
			{at: model.Pos{X: p.Pos.X - 2, Y: p.Pos.Y - 1}, tile: model.PATH, count: FIREWORK_PARTICLES},
			{at: model.Pos{X: p.Pos.X + 2, Y: p.Pos.Y - 1}, tile: model.PATH, count: FIREWORK_PARTICLES},
		},
	})
	s.log.Infof("%s finished #%d in %v", p.Name, order, p.FinishTime)
}
