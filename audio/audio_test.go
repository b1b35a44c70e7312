package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

func drain(s beep.Streamer) (samples int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		samples += n
		if !ok {
			return
		}
	}
}

func TestEveryCueHasTones(t *testing.T) {
	for _, cue := range model.Cues {
		t.Run(cue.Name(), func(t *testing.T) {
			require.NotEmpty(t, Tones[cue])
			s := Streamer(cue, 1, sampleRate)
			require.NotNil(t, s)

			n, peak := drain(s)
			assert.Greater(t, n, 0)
			assert.LessOrEqual(t, n, sampleRate.N(Length(Tones[cue])))
			assert.Greater(t, peak, 0.0)
			assert.LessOrEqual(t, peak, 1.0)
		})
	}
}

func TestStreamerUnknownCue(t *testing.T) {
	assert.Nil(t, Streamer(model.Cue(99), 1, sampleRate))
}

func TestLength(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, Length(Tones[model.CUE_START]))
	assert.Equal(t, 450*time.Millisecond, Length(Tones[model.CUE_FINISH_FIRST]))
	assert.Equal(t, time.Duration(0), Length(nil))
}

func TestOscillatorStopsAfterDuration(t *testing.T) {
	tests := []WaveType{WaveSine, WaveSquare, WaveSaw, WaveTriangle}
	for _, wave := range tests {
		n, peak := drain(NewOscillator(440, 10*time.Millisecond, wave, sampleRate))
		assert.Equal(t, sampleRate.N(10*time.Millisecond), n)
		assert.InDelta(t, 1.0, peak, 0.05)
	}
}

func TestDecayEnvelope(t *testing.T) {
	d := NewDecay(NewOscillator(0, 100*time.Millisecond, WaveSquare, sampleRate), 0.5, 100*time.Millisecond, sampleRate)
	buf := make([][2]float64, sampleRate.N(100*time.Millisecond))
	n, _ := d.Stream(buf)
	require.Equal(t, len(buf), n)
	assert.InDelta(t, 0.5, buf[0][0], 1e-9)
	assert.InDelta(t, decayFloor, buf[n-1][0], 1e-3)
	assert.Greater(t, buf[n/2][0], buf[n-1][0])
}

func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(0.5)
	assert.NotPanics(t, func() {
		for _, cue := range model.Cues {
			sm.Play(cue)
		}
		sm.SetMuted(true)
		sm.Cleanup()
	})
	assert.Zero(t, sm.Played())
	assert.True(t, sm.Muted())
}

func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager(0.5)
	if err := sm.Initialize(); err != nil {
		t.Logf("no audio device: %v", err)
		return
	}
	defer sm.Cleanup()
	require.NoError(t, sm.Initialize())

	sm.Play(model.CUE_BOOST)
	assert.Equal(t, 1, sm.Played())
	sm.SetMuted(true)
	sm.Play(model.CUE_BOOST)
	assert.Equal(t, 1, sm.Played())
}
