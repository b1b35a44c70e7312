package model

import "fmt"

// Cue identifies a sound the race asks its audio collaborator to play.
type Cue int

const (
	CUE_COUNTDOWN Cue = iota
	CUE_START
	CUE_BOOST
	CUE_SLOW
	CUE_PORTAL
	CUE_LIGHTNING
	CUE_FREEZE
	CUE_REVERSE
	CUE_SPAWN
	CUE_FINISH_FIRST
	CUE_FINISH
)

var Cues = []Cue{
	CUE_COUNTDOWN, CUE_START, CUE_BOOST, CUE_SLOW, CUE_PORTAL, CUE_LIGHTNING,
	CUE_FREEZE, CUE_REVERSE, CUE_SPAWN, CUE_FINISH_FIRST, CUE_FINISH,
}

func (c Cue) Name() string {
	switch c {
	case CUE_COUNTDOWN:
		return "countdown"
	case CUE_START:
		return "start"
	case CUE_BOOST:
		return "boost"
	case CUE_SLOW:
		return "slow"
	case CUE_PORTAL:
		return "portal"
	case CUE_LIGHTNING:
		return "lightning"
	case CUE_FREEZE:
		return "freeze"
	case CUE_REVERSE:
		return "reverse"
	case CUE_SPAWN:
		return "spawn"
	case CUE_FINISH_FIRST:
		return "finish_first"
	case CUE_FINISH:
		return "finish"
	default:
		return fmt.Sprintf("n/a:%d", c)
	}
}

// TileCue maps a special tile to the cue played when it fires.
func TileCue(t Tile) (Cue, bool) {
	switch t {
	case BOOST:
		return CUE_BOOST, true
	case SLOW:
		return CUE_SLOW, true
	case PORTAL_A, PORTAL_B:
		return CUE_PORTAL, true
	case LIGHTNING:
		return CUE_LIGHTNING, true
	case FREEZE:
		return CUE_FREEZE, true
	case REVERSE:
		return CUE_REVERSE, true
	case PATH, WALL:
	}
	return 0, false
}
