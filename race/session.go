// Package race runs one maze race: players walk their precomputed shortest
// paths on a shared clock while special tiles bend their speed and position.
package race

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/maze"
	"github.com/zucenko/mazerace/model"
)

var (
	ErrNoPlayers = errors.New("race needs at least one player")
	ErrNoStarts  = errors.New("not enough free start cells")
)

const (
	REVEAL_START     = 2
	REVEAL_STEP      = 2
	REVEAL_LIGHTNING = 3
	REVEAL_PORTAL    = 2
	REVEAL_EXIT      = 1
)

type TickResult struct {
	Running  bool
	Progress float64
}

// Session owns the board and every racer of one race. All mutable state is
// guarded by mu; readers get deep copies.
type Session struct {
	Id    string
	opts  Options
	sinks Sinks
	rng   maze.Rand
	log   *log.Entry

	mu       sync.Mutex
	grid     *model.Grid
	exit     model.Pos
	portalA  *model.Pos
	portalB  *model.Pos
	players  []*model.Player
	finish   []model.FinishEntry
	stats    model.Stats
	revealed [][]bool
	// dynamic tracks the respawnable tiles of the current wave.
	dynamic map[model.Pos]model.Tile

	started bool
	running bool
	stopped bool
	startAt time.Time
	now     time.Time
	outbox  []event

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the board, seats the players and computes their paths.
// The race clock does not run until Start.
func New(opts Options, sinks Sinks, rng maze.Rand) (*Session, error) {
	if opts.Players < 1 {
		return nil, ErrNoPlayers
	}
	if opts.MoveDuration <= 0 {
		opts.MoveDuration = DefaultOptions().MoveDuration
	}
	if opts.Tuning.Name == "" {
		opts.Tuning = Classic()
	}

	id := uuid.New().String()
	s := &Session{
		Id:      id,
		opts:    opts,
		sinks:   sinks.withDefaults(),
		rng:     rng,
		log:     log.WithField("race", id[:8]),
		dynamic: make(map[model.Pos]model.Tile),
	}

	board := opts.Layout
	if board == nil {
		board = maze.Generate(s.mazeConfig(), rng)
	}
	s.grid = board.Grid.Clone()
	s.exit = board.Exit
	if board.PortalA != nil && board.PortalB != nil {
		a, b := *board.PortalA, *board.PortalB
		s.portalA, s.portalB = &a, &b
	}
	if opts.Dynamic.Enabled {
		for _, pl := range board.Placements {
			s.dynamic[pl.Pos] = pl.Tile
		}
	}

	starts := maze.StartPositions(s.grid, s.exit, opts.Players)
	if len(starts) < opts.Players {
		return nil, fmt.Errorf("%w: seated %d of %d", ErrNoStarts, len(starts), opts.Players)
	}

	if opts.Fog {
		s.revealed = make([][]bool, s.grid.Height)
		for y := range s.revealed {
			s.revealed[y] = make([]bool, s.grid.Width)
		}
	}

	s.players = make([]*model.Player, 0, len(starts))
	for i, at := range starts {
		p := model.NewPlayer(PlayerName(opts.Names, i), i)
		p.Place(at)
		p.Path = maze.ShortestPath(s.grid, at, s.exit)
		if len(p.Path) == 0 {
			p.Stranded = true
			s.log.Warnf("%s at %v has no route to the exit, marking stranded", p.Name, at)
		}
		s.reveal(at, REVEAL_START)
		s.players = append(s.players, p)
	}
	s.reveal(s.exit, REVEAL_EXIT)

	s.log.Infof("new race %dx%d, %d players, exit %v, tuning %s", s.grid.Width, s.grid.Height, len(s.players), s.exit, opts.Tuning.Name)
	return s, nil
}

// PlayerName returns the configured name for seat i or "Player i+1".
func PlayerName(names []string, i int) string {
	if i < len(names) {
		if n := strings.TrimSpace(names[i]); n != "" {
			return n
		}
	}
	return fmt.Sprintf("Player %d", i+1)
}

func (s *Session) mazeConfig() maze.Config {
	cfg := maze.Config{
		Width:     s.opts.Width,
		Height:    s.opts.Height,
		Specials:  s.opts.Specials,
		Quotas:    s.opts.Quotas,
		StartZone: s.opts.StartZone,
	}
	if len(cfg.Quotas) == 0 {
		cfg.Quotas = maze.ClassicQuotas()
	}
	if s.opts.Dynamic.Enabled {
		cfg.Quotas = maze.DynamicQuotas()
		cfg.StartZone = 0
	}
	return cfg
}

// Start runs the race clock from now and launches the tile spawner when
// dynamic tiles are enabled. Calling it twice has no effect.
func (s *Session) Start(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started, s.running = true, true
	s.startAt, s.now = now, now
	for _, p := range s.players {
		p.LastMove = now
	}
	s.log.Info("race started")

	if s.opts.Dynamic.Enabled && s.opts.Dynamic.Interval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.wg.Add(1)
		go s.spawnLoop(ctx)
	}
}

// Stop halts the race. Later ticks and spawn waves change nothing. Stop
// returns once the spawner goroutine is gone.
func (s *Session) Stop() {
	s.mu.Lock()
	wasStopped := s.stopped
	s.stopped, s.running = true, false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	if !wasStopped {
		s.log.Info("race stopped")
	}
}

// Tick advances every racer to now, then reports to the sinks.
func (s *Session) Tick(now time.Time) TickResult {
	s.mu.Lock()
	if !s.running {
		res := TickResult{Progress: s.progress()}
		s.mu.Unlock()
		return res
	}
	s.now = now
	for _, p := range s.players {
		if p.Finished || p.Stranded {
			continue
		}
		s.advance(p, now)
	}
	if s.complete() {
		s.running = false
		if s.cancel != nil {
			s.cancel()
		}
		s.log.Infof("race complete after %v", now.Sub(s.startAt))
	}
	res := TickResult{Running: s.running, Progress: s.progress()}
	snap := s.snapshot()
	events := s.drain()
	s.mu.Unlock()

	s.deliver(events)
	s.present(snap)
	return res
}

func (s *Session) complete() bool {
	for _, p := range s.players {
		if !p.Finished && !p.Stranded {
			return false
		}
	}
	return true
}

func (s *Session) progress() float64 {
	sum, n := 0.0, 0
	for _, p := range s.players {
		if p.Stranded {
			continue
		}
		sum += p.Progress()
		n++
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n)
}

func (s *Session) reveal(at model.Pos, radius int) {
	if s.revealed == nil {
		return
	}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := model.Pos{X: at.X + dx, Y: at.Y + dy}
			if s.grid.InBound(p) {
				s.revealed[p.Y][p.X] = true
			}
		}
	}
}

func (s *Session) elapsed(now time.Time) time.Duration {
	if !s.started {
		return 0
	}
	return now.Sub(s.startAt)
}

func (s *Session) emit(now time.Time, e event) {
	e.entry.At = s.elapsed(now).Seconds()
	s.outbox = append(s.outbox, e)
}

func (s *Session) drain() []event {
	events := s.outbox
	s.outbox = nil
	return events
}

func (s *Session) deliver(events []event) {
	for _, e := range events {
		s.play(e.cue)
		if e.entry.Message != "" {
			s.sinks.Log.Append(e.entry)
		}
		for _, b := range e.bursts {
			s.sinks.Visual.Burst(b.at, b.tile, b.count)
		}
		if e.banner != "" {
			s.sinks.Visual.Banner(e.banner)
		}
		if e.stat.Special() {
			s.sinks.Stats.Increment(e.stat)
		}
	}
}

func (s *Session) play(cue model.Cue) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warnf("audio cue %s failed: %v", cue.Name(), r)
		}
	}()
	s.sinks.Audio.Play(cue)
}

// Cue plays a cue outside of the race itself, e.g. during the countdown.
func (s *Session) Cue(cue model.Cue) {
	s.play(cue)
}

// Announce shows a banner outside of the race itself.
func (s *Session) Announce(text string) {
	s.sinks.Visual.Banner(text)
}

type entrySource interface {
	Entries() []model.LogEntry
}

func (s *Session) present(snap *model.Snapshot) {
	if src, ok := s.sinks.Log.(entrySource); ok {
		snap.Log = src.Entries()
	}
	s.sinks.Render.Present(snap)
}

func (s *Session) snapshot() *model.Snapshot {
	snap := &model.Snapshot{
		Elapsed:  s.elapsed(s.now),
		Running:  s.running,
		Grid:     s.grid.Clone(),
		Exit:     s.exit,
		Players:  make([]model.Player, 0, len(s.players)),
		Finish:   s.finishOrder(),
		Progress: s.progress(),
		Fog:      s.opts.Fog,
	}
	if s.portalA != nil && s.portalB != nil {
		a, b := *s.portalA, *s.portalB
		snap.PortalA, snap.PortalB = &a, &b
	}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p.Clone())
	}
	if s.revealed != nil {
		snap.Revealed = make([][]bool, len(s.revealed))
		for y, row := range s.revealed {
			snap.Revealed[y] = append([]bool(nil), row...)
		}
	}
	return snap
}

func (s *Session) finishOrder() []model.FinishEntry {
	out := make([]model.FinishEntry, 0, len(s.finish))
	for _, f := range s.finish {
		f.Player = f.Player.Clone()
		out = append(out, f)
	}
	return out
}

// Snapshot returns a deep copy of the current race state.
func (s *Session) Snapshot() *model.Snapshot {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()
	if src, ok := s.sinks.Log.(entrySource); ok {
		snap.Log = src.Entries()
	}
	return snap
}

// FinishOrder returns the finish records in the order they were appended.
func (s *Session) FinishOrder() []model.FinishEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishOrder()
}

func (s *Session) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Done reports whether the race was started and is no longer running.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.running
}

func (s *Session) Players() []model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p.Clone())
	}
	return out
}

func (s *Session) Exit() model.Pos {
	return s.exit
}

func (s *Session) Options() Options {
	return s.opts
}
