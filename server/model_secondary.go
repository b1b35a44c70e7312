package server

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/zucenko/mazerace/model"
	"github.com/zucenko/mazerace/race"
)

const HTTP_SUCCESS = 200
const HTTP_CREATED = 201
const HTTP_BAD_REQUEST = 400
const HTTP_NOT_FOUND = 404
const HTTP_TIMEOUT = 408
const HTTP_CONFLICT = 409
const HTTP_SERVER_ERR = 503

type ResponseCode int

const (
	GAME_READY ResponseCode = iota
	GAME_CREATED
	GAME_NOT_FOUND
	GAME_INVALIDE
	GAME_RUNNING
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case GAME_READY:
		return HTTP_SUCCESS
	case GAME_CREATED:
		return HTTP_CREATED
	case GAME_NOT_FOUND:
		return HTTP_NOT_FOUND
	case GAME_INVALIDE:
		return HTTP_BAD_REQUEST
	case GAME_RUNNING:
		return HTTP_CONFLICT
	default:
		panic(h)
	}
}

func (gss GameSessionState) Name() string {
	switch gss {
	case GS_NEW:
		return "GS_NEW"
	case GS_PLAY:
		return "GS_PLAY"
	case GS_ERR:
		return "GS_ERR"
	case GS_OVER:
		return "GS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", gss)
	}
}

func (ws WatcherSessionState) Name() string {
	switch ws {
	case WS_NEW:
		return "NEW"
	case WS_PLAY:
		return "PLAY"
	case WS_OVER:
		return "OVER"
	case WS_ERR:
		return "ERR"
	default:
		return "N/A"
	}
}

type RequestKind int

const (
	REQ_CREATE RequestKind = iota
	REQ_FIND
	REQ_DELETE
	REQ_LIST
)

type GameContextAwaiting struct {
	ResponseCode ResponseCode
	GameSession  *GameSession
	GameSessions []*GameSession
	Err          error
}

type GameRequest struct {
	Kind                RequestKind
	RaceId              string
	Create              CreateRequest
	GameContextAwaiting chan GameContextAwaiting
}

// CreateRequest overrides the server defaults for one race. Zero values keep
// the default.
type CreateRequest struct {
	Players  int      `json:"players,omitempty"`
	Names    []string `json:"names,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	MoveMs   int      `json:"moveMs,omitempty"`
	Seed     int64    `json:"seed,omitempty"`
	Fog      *bool    `json:"fog,omitempty"`
	Specials *bool    `json:"specials,omitempty"`
	Dynamic  *bool    `json:"dynamic,omitempty"`
	Tuning   string   `json:"tuning,omitempty"`
}

type WatcherConnectRequest struct {
	Con      *websocket.Conn
	GameOver chan struct{}
}

// RaceInfo is the JSON view of a hosted race.
type RaceInfo struct {
	RaceId   string   `json:"raceId"`
	State    string   `json:"state"`
	Players  []string `json:"players"`
	Progress float64  `json:"progress"`
	Watchers string   `json:"watch"`
}

type ResultsResponse struct {
	RaceId  string           `json:"raceId"`
	Results []model.Standing `json:"results"`
	Summary race.Summary     `json:"summary"`
	Text    string           `json:"text"`
}
