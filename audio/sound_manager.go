// Package audio plays race cues as short synthesized tones.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// SoundManager mixes cue tones onto the speaker. Every method is safe to call
// before Initialize or after a failed Initialize; cues are then dropped.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	muted       bool
	initialized bool
	played      int
}

func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		log.Warnf("audio unavailable, continuing without sound: %v", err)
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup drops queued cues and detaches from the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// SetMuted toggles sound without tearing the speaker down.
func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = muted
}

func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Play queues the tones of a cue. It never blocks on the device.
func (sm *SoundManager) Play(cue model.Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}
	streamer := Streamer(cue, sm.volume, sampleRate)
	if streamer == nil {
		log.Debugf("no tones for cue %s", cue.Name())
		return
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
	sm.played++
}

// Played counts the cues handed to the mixer.
func (sm *SoundManager) Played() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played
}
