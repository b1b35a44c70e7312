package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/zucenko/mazerace/model"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// the decay envelope ends at this fraction of full gain
const decayFloor = 0.01

// Tone is one enveloped note of a cue, starting Delay after the cue fires.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Wave     WaveType
	Volume   float64
	Delay    time.Duration
}

func tone(freq float64, ms int, wave WaveType, volume float64, delayMs int) Tone {
	return Tone{
		Freq:     freq,
		Duration: time.Duration(ms) * time.Millisecond,
		Wave:     wave,
		Volume:   volume,
		Delay:    time.Duration(delayMs) * time.Millisecond,
	}
}

// Tones lists the notes of every race cue.
var Tones = map[model.Cue][]Tone{
	model.CUE_COUNTDOWN: {tone(440, 150, WaveSine, 0.4, 0)},
	model.CUE_START:     {tone(880, 300, WaveSine, 0.5, 0), tone(1100, 400, WaveSine, 0.5, 100)},
	model.CUE_BOOST:     {tone(800, 100, WaveSine, 0.2, 0), tone(1000, 100, WaveSine, 0.2, 50)},
	model.CUE_SLOW:      {tone(200, 200, WaveSaw, 0.15, 0)},
	model.CUE_PORTAL:    {tone(400, 100, WaveSine, 0.3, 0), tone(800, 150, WaveSine, 0.3, 100)},
	model.CUE_LIGHTNING: {tone(1200, 100, WaveSine, 0.4, 0), tone(1500, 150, WaveSine, 0.4, 50)},
	model.CUE_FREEZE:    {tone(150, 300, WaveSine, 0.3, 0)},
	model.CUE_REVERSE:   {tone(300, 100, WaveSaw, 0.3, 0), tone(200, 200, WaveSaw, 0.3, 100)},
	model.CUE_SPAWN:     {tone(600, 100, WaveTriangle, 0.2, 0)},
	model.CUE_FINISH_FIRST: {
		tone(523, 150, WaveSine, 0.4, 0),
		tone(659, 150, WaveSine, 0.4, 150),
		tone(784, 300, WaveSine, 0.5, 300),
	},
	model.CUE_FINISH: {tone(600, 200, WaveTriangle, 0.3, 0)},
}

// Length is the time from the first tone's start to the last tone's end.
func Length(tones []Tone) time.Duration {
	var end time.Duration
	for _, t := range tones {
		end = max(end, t.Delay+t.Duration)
	}
	return end
}

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveTriangle:
			val = 1 - 4*math.Abs(o.phase-0.5)
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay ramps the gain exponentially from volume down to decayFloor over
// the length of the note.
type decay struct {
	streamer beep.Streamer
	volume   float64
	total    int
	position int
}

func NewDecay(s beep.Streamer, volume float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, volume: volume, total: rate.N(duration)}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	ratio := decayFloor / math.Max(d.volume, decayFloor)
	for i := 0; i < n; i++ {
		gain := d.volume
		if d.total > 0 {
			gain *= math.Pow(ratio, float64(d.position)/float64(d.total))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Streamer renders a cue at the given master volume, or nil for an unknown cue.
func Streamer(cue model.Cue, master float64, rate beep.SampleRate) beep.Streamer {
	tones, ok := Tones[cue]
	if !ok || len(tones) == 0 {
		return nil
	}
	voices := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		note := NewDecay(NewOscillator(t.Freq, t.Duration, t.Wave, rate), t.Volume, t.Duration, rate)
		voices = append(voices, beep.Seq(beep.Silence(rate.N(t.Delay)), note))
	}
	return newVolume(beep.Take(rate.N(Length(tones)), beep.Mix(voices...)), master)
}
