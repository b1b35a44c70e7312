package model

import "time"

// LogEntry is one line of the race event log.
type LogEntry struct {
	At      float64 `json:"at"`
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
}

// Snapshot is a deep copy of a session taken after a tick, safe to read
// from any goroutine.
type Snapshot struct {
	Elapsed  time.Duration
	Running  bool
	Grid     *Grid
	Exit     Pos
	PortalA  *Pos
	PortalB  *Pos
	Players  []Player
	Finish   []FinishEntry
	Progress float64
	Fog      bool
	Revealed [][]bool
	Log      []LogEntry
}

// Visible reports whether p may be shown to viewers.
func (s *Snapshot) Visible(p Pos) bool {
	if !s.Fog {
		return true
	}
	if p.Y < 0 || p.Y >= len(s.Revealed) || p.X < 0 || p.X >= len(s.Revealed[p.Y]) {
		return false
	}
	return s.Revealed[p.Y][p.X]
}

type ServerMessage struct {
	Setup   []Setup    `json:"setup,omitempty"`
	Frames  []Frame    `json:"frames,omitempty"`
	Results []Standing `json:"results,omitempty"`
}

type Setup struct {
	RaceId  string       `json:"raceId"`
	Cols    int          `json:"cols"`
	Rows    int          `json:"rows"`
	ExitCol int          `json:"exitCol"`
	ExitRow int          `json:"exitRow"`
	Fog     bool         `json:"fog"`
	Players []PlayerInfo `json:"players"`
}

type PlayerInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Frame struct {
	Elapsed  float64      `json:"elapsed"`
	Progress float64      `json:"progress"`
	Running  bool         `json:"running"`
	Players  []PlayerView `json:"players"`
	Visibles []Visibilize `json:"visibles"`
	Log      []LogEntry   `json:"log,omitempty"`
}

type PlayerView struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Frozen   bool    `json:"frozen"`
	Speed    float64 `json:"speed"`
	Finished bool    `json:"finished"`
	Stranded bool    `json:"stranded,omitempty"`
	Progress float64 `json:"progress"`
}

type Visibilize struct {
	Col         int    `json:"col"`
	Row         int    `json:"row"`
	Tile        string `json:"tile"`
	Exit        bool   `json:"exit,omitempty"`
	Portal      bool   `json:"portal,omitempty"`
	PortalToCol int    `json:"portalToCol,omitempty"`
	PortalToRow int    `json:"portalToRow,omitempty"`
}

// Standing is one line of the final ranking.
type Standing struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Seconds    float64 `json:"seconds"`
	PathLength int     `json:"pathLength"`
	Winner     bool    `json:"winner,omitempty"`
	Loser      bool    `json:"loser,omitempty"`
	DNF        bool    `json:"dnf,omitempty"`
}

// MakeSetup describes the board once, before frames start flowing.
func (s *Snapshot) MakeSetup(raceId string) Setup {
	players := make([]PlayerInfo, 0, len(s.Players))
	for i := range s.Players {
		players = append(players, PlayerInfo{Name: s.Players[i].Name, Color: s.Players[i].ColorHex()})
	}
	return Setup{
		RaceId:  raceId,
		Cols:    s.Grid.Width,
		Rows:    s.Grid.Height,
		ExitCol: s.Exit.X,
		ExitRow: s.Exit.Y,
		Fog:     s.Fog,
		Players: players,
	}
}

// MakeFrame flattens the snapshot, hiding cells the fog still covers.
func (s *Snapshot) MakeFrame() Frame {
	players := make([]PlayerView, 0, len(s.Players))
	for i := range s.Players {
		p := &s.Players[i]
		players = append(players, PlayerView{
			Name:     p.Name,
			X:        p.Render.X,
			Y:        p.Render.Y,
			Frozen:   p.Frozen,
			Speed:    p.SpeedMultiplier,
			Finished: p.Finished,
			Stranded: p.Stranded,
			Progress: p.Progress(),
		})
	}
	return Frame{
		Elapsed:  s.Elapsed.Seconds(),
		Progress: s.Progress,
		Running:  s.Running,
		Players:  players,
		Visibles: s.Visibles(),
		Log:      s.Log,
	}
}

// Visibles lists every non-wall cell the viewers are allowed to see.
func (s *Snapshot) Visibles() []Visibilize {
	visibles := make([]Visibilize, 0)
	for y := 0; y < s.Grid.Height; y++ {
		for x := 0; x < s.Grid.Width; x++ {
			p := Pos{X: x, Y: y}
			if !s.Visible(p) {
				continue
			}
			t := s.Grid.At(p)
			if t == WALL {
				continue
			}
			visibles = append(visibles, s.visibilizerFromCell(p, t))
		}
	}
	return visibles
}

func (s *Snapshot) visibilizerFromCell(p Pos, t Tile) Visibilize {
	v := Visibilize{Col: p.X, Row: p.Y, Tile: t.Name(), Exit: p == s.Exit}
	var target *Pos
	switch t {
	case PORTAL_A:
		target = s.PortalB
	case PORTAL_B:
		target = s.PortalA
	}
	if target != nil {
		v.Portal = true
		v.PortalToCol, v.PortalToRow = target.X, target.Y
	}
	return v
}
