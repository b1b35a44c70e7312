package race

import (
	"strings"
	"time"

	"github.com/zucenko/mazerace/maze"
)

// Tuning holds the magnitudes of the tile effects.
type Tuning struct {
	Name            string
	BoostMultiplier float64
	SlowMultiplier  float64
	SpeedWindow     time.Duration
	FreezeDuration  time.Duration
	LightningJump   int
	ReverseJump     int
}

func Classic() Tuning {
	return Tuning{
		Name:            "classic",
		BoostMultiplier: 2,
		SlowMultiplier:  0.4,
		SpeedWindow:     2500 * time.Millisecond,
		FreezeDuration:  2 * time.Second,
		LightningJump:   5,
		ReverseJump:     5,
	}
}

func Wild() Tuning {
	return Tuning{
		Name:            "wild",
		BoostMultiplier: 2.5,
		SlowMultiplier:  0.3,
		SpeedWindow:     3 * time.Second,
		FreezeDuration:  2500 * time.Millisecond,
		LightningJump:   8,
		ReverseJump:     5,
	}
}

// TuningByName resolves "classic" or "wild", case insensitive.
func TuningByName(name string) (Tuning, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "classic":
		return Classic(), true
	case "wild":
		return Wild(), true
	default:
		return Tuning{}, false
	}
}

// DynamicOptions configures mid-race tile respawning.
type DynamicOptions struct {
	Enabled  bool
	Interval time.Duration
	// Min and Max bound the number of tiles placed per wave.
	Min, Max int
}

type Options struct {
	Width, Height int
	Players       int
	// Names are applied in seat order; missing or blank names become "Player N".
	Names        []string
	MoveDuration time.Duration
	Fog          bool

	Specials  bool
	Quotas    []maze.Quota
	StartZone int
	Tuning    Tuning
	Dynamic   DynamicOptions

	// Layout replaces generation with a fixed board when set.
	Layout *maze.Result
}

func DefaultOptions() Options {
	return Options{
		Width:        35,
		Height:       35,
		Players:      4,
		MoveDuration: 140 * time.Millisecond,
		Specials:     true,
		Quotas:       maze.ClassicQuotas(),
		StartZone:    5,
		Tuning:       Classic(),
		Dynamic: DynamicOptions{
			Interval: 3 * time.Second,
			Min:      3,
			Max:      6,
		},
	}
}
