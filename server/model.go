package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/race"
)

type GameServer struct {
	GameSessions map[string]*GameSession
	GameRequests chan GameRequest
	Upgrader     *websocket.Upgrader
	// Config is the base every new race starts from.
	Config config.Config
	// Retain is how long finished races stay listed.
	Retain time.Duration
	// Countdown and Beat override the driver countdown when set.
	Countdown *int
	Beat      time.Duration
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_PLAY
	GS_ERR
	GS_OVER
)

// GameSession hosts one race and streams it to any number of watchers.
type GameSession struct {
	Id      string
	Race    *race.Session
	Driver  *race.Driver
	Created time.Time

	mu      sync.Mutex
	state   GameSessionState
	endedAt time.Time

	Watchers               []*WatcherSession
	WatcherConnectRequests chan WatcherConnectRequest
	Frames                 chan *model.Snapshot
	Disconnects            chan int32
	finished               chan error
	nextWatcher            int32
	lastSent               time.Duration
	setup                  model.Setup

	ctx    context.Context
	cancel context.CancelFunc
	closed chan struct{}
}

type WatcherSessionState int

const (
	WS_NEW WatcherSessionState = iota + 1
	WS_PLAY
	WS_OVER
	WS_ERR
)

// WatcherSession is one spectator connection. Only its write loop touches Conn
// for writing; MessagesToSend is closed by the game session to end it.
type WatcherSession struct {
	State    WatcherSessionState
	Id       int32
	Conn     *websocket.Conn
	GameOver chan struct{}

	MessagesToSend chan model.ServerMessage

	DebugOutMessages int
	DebugDropped     int
}
