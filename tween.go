package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action hangs callbacks on a running tween. nexts start follow-up tweens
// when it finishes.
type Action struct {
	nexts    []func(v *Viewer)
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
}

// next queues t to start once this action's tween is done.
func (a *Action) next(t *gween.Tween, onChange func(float32)) *Action {
	action := &Action{onChange: onChange}
	if a.nexts == nil {
		a.nexts = make([]func(v *Viewer), 0)
	}
	a.nexts = append(a.nexts,
		func(v *Viewer) {
			v.Tweens[t] = action
		})
	return action
}

// tween starts a 0 to 1 tween lasting seconds.
func (v *Viewer) tween(seconds float32, easing ease.TweenFunc, onChange func(float32)) *Action {
	action := &Action{onChange: onChange}
	v.Tweens[gween.New(0, 1, seconds, easing)] = action
	return action
}

// updateTweens advances every tween by dt seconds and fires the callbacks of
// the finished ones.
func (v *Viewer) updateTweens(dt float32) {
	for t, a := range v.Tweens {
		curr, finished := t.Update(dt)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			for _, next := range a.nexts {
				next(v)
			}
			delete(v.Tweens, t)
		}
	}
}
