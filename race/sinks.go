package race

import "github.com/zucenko/mazerace/model"

// RenderSink receives a deep copy of the session after every tick.
type RenderSink interface {
	Present(snap *model.Snapshot)
}

// AudioSink plays cues. Implementations must not block and swallow their own failures.
type AudioSink interface {
	Play(cue model.Cue)
}

// EventLogSink stores race events. Capping is up to the implementation.
type EventLogSink interface {
	Append(entry model.LogEntry)
}

// VisualSink receives presentation-only effects: particle bursts and banners.
type VisualSink interface {
	Burst(at model.Pos, tile model.Tile, count int)
	Banner(text string)
}

// StatsSink is told about every triggered tile effect. *model.Stats satisfies it.
type StatsSink interface {
	Increment(t model.Tile)
}

// Sinks are the collaborators a session reports to. Nil members are replaced
// by no-op implementations.
type Sinks struct {
	Render RenderSink
	Audio  AudioSink
	Log    EventLogSink
	Visual VisualSink
	Stats  StatsSink
}

type nopSink struct{}

func (nopSink) Present(*model.Snapshot) {}
func (nopSink) Play(model.Cue) {}
func (nopSink) Append(model.LogEntry) {}
func (nopSink) Burst(model.Pos, model.Tile, int) {}
func (nopSink) Banner(string) {}
func (nopSink) Increment(model.Tile) {}

func (s Sinks) withDefaults() Sinks {
	if s.Render == nil {
		s.Render = nopSink{}
	}
	if s.Audio == nil {
		s.Audio = nopSink{}
	}
	if s.Log == nil {
		s.Log = NewEventLog(EVENT_LOG_SIZE)
	}
	if s.Visual == nil {
		s.Visual = nopSink{}
	}
	if s.Stats == nil {
		s.Stats = nopSink{}
	}
	return s
}

// RenderFunc adapts a plain function to RenderSink.
type RenderFunc func(snap *model.Snapshot)

func (f RenderFunc) Present(snap *model.Snapshot) {
	f(snap)
}

// burst is a queued VisualSink.Burst call.
type burst struct {
	at    model.Pos
	tile  model.Tile
	count int
}

// event is everything one race happening reports to the collaborators.
// Events are queued under the session lock and delivered after it is released.
type event struct {
	cue    model.Cue
	entry  model.LogEntry
	bursts []burst
	banner string
	stat   model.Tile
}
