package server

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/maze"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/race"
)

const (
	WATCHER_BUFFER     = 16
	FRAME_BUFFER       = 4
	BROADCAST_INTERVAL = 50 * time.Millisecond
	FINAL_TIMEOUT      = time.Second
)

// NewGameSession builds the race and its driver. Nothing runs until Loop.
func NewGameSession(opts race.Options, rng maze.Rand) (*GameSession, error) {
	gs := &GameSession{
		Created:                time.Now(),
		state:                  GS_NEW,
		Watchers:               make([]*WatcherSession, 0),
		WatcherConnectRequests: make(chan WatcherConnectRequest),
		Frames:                 make(chan *model.Snapshot, FRAME_BUFFER),
		Disconnects:            make(chan int32, WATCHER_BUFFER),
		finished:               make(chan error, 1),
		closed:                 make(chan struct{}),
	}
	r, err := race.New(opts, race.Sinks{Render: gs}, rng)
	if err != nil {
		return nil, err
	}
	gs.Id = r.Id
	gs.Race = r
	gs.Driver = race.NewDriver(r)
	gs.setup = r.Snapshot().MakeSetup(r.Id)
	gs.ctx, gs.cancel = context.WithCancel(context.Background())
	return gs, nil
}

// Present hands a frame to the loop. Frames are dropped while the loop lags;
// the final state is always sent once the race ends.
func (gs *GameSession) Present(snap *model.Snapshot) {
	select {
	case gs.Frames <- snap:
	default:
	}
}

func (gs *GameSession) State() GameSessionState {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.state
}

func (gs *GameSession) setState(state GameSessionState) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.state = state
	if state == GS_OVER || state == GS_ERR {
		gs.endedAt = time.Now()
	}
}

// Ended reports whether the race is over and since when.
func (gs *GameSession) Ended() (time.Time, bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.endedAt, gs.state == GS_OVER || gs.state == GS_ERR
}

func (gs *GameSession) Info() RaceInfo {
	players := gs.Race.Players()
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}
	return RaceInfo{
		RaceId:   gs.Id,
		State:    gs.State().Name(),
		Players:  names,
		Progress: gs.Race.Progress(),
		Watchers: "/races/" + gs.Id + "/watch",
	}
}

// Loop drives the race and serves watchers until Stop. Finished races keep
// serving late watchers their final frame and results.
func (gs *GameSession) Loop() {
	log.Infof("GameSession.Loop start %s", gs.Id)
	defer close(gs.closed)

	gs.setState(GS_PLAY)
	go func() {
		gs.finished <- gs.Driver.Run(gs.ctx)
	}()

	for {
		select {
		case wcr := <-gs.WatcherConnectRequests:
			gs.addWatcher(wcr)
		case snap := <-gs.Frames:
			gs.broadcastFrame(snap)
		case id := <-gs.Disconnects:
			gs.dropWatcher(id, WS_ERR)
		case err := <-gs.finished:
			gs.finish(err)
		case <-gs.ctx.Done():
			log.Infof("GameSession.Loop stop %s", gs.Id)
			if gs.State() == GS_PLAY {
				gs.setState(GS_ERR)
			}
			for len(gs.Watchers) > 0 {
				gs.dropWatcher(gs.Watchers[0].Id, WS_OVER)
			}
			return
		}
	}
}

// Stop cancels the race and waits for the loop to exit.
func (gs *GameSession) Stop() {
	gs.cancel()
	<-gs.closed
}

func (gs *GameSession) addWatcher(wcr WatcherConnectRequest) {
	gs.nextWatcher++
	ws := &WatcherSession{
		State:          WS_NEW,
		Id:             gs.nextWatcher,
		Conn:           wcr.Con,
		GameOver:       wcr.GameOver,
		MessagesToSend: make(chan model.ServerMessage, WATCHER_BUFFER),
	}
	ws.keepAlive()
	go ws.LoopChannelRead(gs.Disconnects, gs.closed)
	go ws.LoopChannelWrite(gs.Disconnects, gs.closed)
	log.Printf("GameSession %s watcher %d joined", gs.Id, ws.Id)

	ws.MessagesToSend <- model.ServerMessage{Setup: []model.Setup{gs.setup}}
	ws.MessagesToSend <- model.ServerMessage{Frames: []model.Frame{gs.Race.Snapshot().MakeFrame()}}

	if _, over := gs.Ended(); over {
		ws.MessagesToSend <- model.ServerMessage{Results: gs.Race.Results()}
		ws.State = WS_OVER
		close(ws.MessagesToSend)
		return
	}
	ws.State = WS_PLAY
	gs.Watchers = append(gs.Watchers, ws)
}

func (gs *GameSession) broadcastFrame(snap *model.Snapshot) {
	if snap.Running && gs.lastSent > 0 && snap.Elapsed-gs.lastSent < BROADCAST_INTERVAL {
		return
	}
	gs.lastSent = snap.Elapsed
	gs.send(model.ServerMessage{Frames: []model.Frame{snap.MakeFrame()}})
}

// send never blocks: a watcher with a full queue misses the message.
func (gs *GameSession) send(mes model.ServerMessage) {
	for _, ws := range gs.Watchers {
		select {
		case ws.MessagesToSend <- mes:
		default:
			ws.DebugDropped++
			log.Warnf("GameSession %s watcher %d lagging, message dropped", gs.Id, ws.Id)
		}
	}
}

// sendFinal waits a little for lagging watchers; losing the results is worse
// than losing a frame.
func (gs *GameSession) sendFinal(mes model.ServerMessage) {
	for _, ws := range gs.Watchers {
		select {
		case ws.MessagesToSend <- mes:
		case <-time.After(FINAL_TIMEOUT):
			log.Warnf("GameSession %s watcher %d missed the final message", gs.Id, ws.Id)
		}
	}
}

func (gs *GameSession) finish(err error) {
	switch {
	case err == nil:
		gs.setState(GS_OVER)
		log.Infof("GameSession %s race over", gs.Id)
	case errors.Is(err, context.Canceled):
		gs.setState(GS_ERR)
		log.Infof("GameSession %s race cancelled", gs.Id)
	default:
		gs.setState(GS_ERR)
		log.Errorf("GameSession %s race failed: %v", gs.Id, err)
	}
	gs.sendFinal(model.ServerMessage{Frames: []model.Frame{gs.Race.Snapshot().MakeFrame()}})
	gs.sendFinal(model.ServerMessage{Results: gs.Race.Results()})
	for len(gs.Watchers) > 0 {
		gs.dropWatcher(gs.Watchers[0].Id, WS_OVER)
	}
}

// dropWatcher ends the watcher's write loop. Unknown ids were already dropped.
func (gs *GameSession) dropWatcher(id int32, state WatcherSessionState) {
	for i, ws := range gs.Watchers {
		if ws.Id != id {
			continue
		}
		ws.State = state
		close(ws.MessagesToSend)
		gs.Watchers = append(gs.Watchers[:i], gs.Watchers[i+1:]...)
		log.Printf("GameSession %s watcher %d left as %s", gs.Id, id, state.Name())
		return
	}
}
