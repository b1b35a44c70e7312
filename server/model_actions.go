package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/race"
)

const (
	URI_RACES   = "/races"
	URI_RACE    = "/races/:id"
	URI_WATCH   = "/races/:id/watch"
	URI_RESULTS = "/races/:id/results"
)

const (
	REQUEST_TIMEOUT = 2 * time.Second
	SWEEP_INTERVAL  = time.Minute
	RETAIN          = 10 * time.Minute
)

var ErrTimeout = errors.New("game server busy")

func NewGameServer(cfg config.Config) *GameServer {
	return &GameServer{
		GameSessions: make(map[string]*GameSession),
		GameRequests: make(chan GameRequest),
		Upgrader:     &websocket.Upgrader{},
		Config:       cfg,
		Retain:       RETAIN,
	}
}

func (s *GameServer) Routes(router *way.Router) {
	router.HandleFunc("POST", URI_RACES, s.HandleCreate())
	router.HandleFunc("GET", URI_RACES, s.HandleList())
	router.HandleFunc("DELETE", URI_RACE, s.HandleDelete())
	router.HandleFunc("GET", URI_WATCH, s.HandleWatch())
	router.HandleFunc("GET", URI_RESULTS, s.HandleResults())
}

// Loop owns GameSessions. Every handler goes through GameRequests.
func (s *GameServer) Loop(ctx context.Context) {
	log.Printf("GameServer.Loop starting")
	sweep := time.NewTicker(SWEEP_INTERVAL)
	defer sweep.Stop()
	for {
		select {
		case req := <-s.GameRequests:
			req.GameContextAwaiting <- s.handle(req)
		case now := <-sweep.C:
			s.sweep(now)
		case <-ctx.Done():
			log.Printf("GameServer.Loop stopping %d sessions", len(s.GameSessions))
			for id, gs := range s.GameSessions {
				gs.Stop()
				delete(s.GameSessions, id)
			}
			return
		}
	}
}

func (s *GameServer) handle(req GameRequest) GameContextAwaiting {
	switch req.Kind {
	case REQ_CREATE:
		gs, err := s.create(req.Create)
		if err != nil {
			log.Warnf("GameServer create: %v", err)
			return GameContextAwaiting{ResponseCode: GAME_INVALIDE, Err: err}
		}
		return GameContextAwaiting{ResponseCode: GAME_CREATED, GameSession: gs}
	case REQ_FIND:
		if gs, ok := s.GameSessions[req.RaceId]; ok {
			return GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}
		}
	case REQ_DELETE:
		if gs, ok := s.GameSessions[req.RaceId]; ok {
			gs.Stop()
			delete(s.GameSessions, req.RaceId)
			log.Infof("GameServer removed %s", req.RaceId)
			return GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}
		}
	case REQ_LIST:
		list := make([]*GameSession, 0, len(s.GameSessions))
		for _, gs := range s.GameSessions {
			list = append(list, gs)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Created.Before(list[j].Created) })
		return GameContextAwaiting{ResponseCode: GAME_READY, GameSessions: list}
	}
	return GameContextAwaiting{ResponseCode: GAME_NOT_FOUND}
}

func (s *GameServer) create(req CreateRequest) (*GameSession, error) {
	cfg := req.apply(s.Config)
	opts, err := cfg.RaceOptions()
	if err != nil {
		return nil, err
	}
	gs, err := NewGameSession(opts, cfg.Rand())
	if err != nil {
		return nil, err
	}
	if s.Countdown != nil {
		gs.Driver.Countdown = *s.Countdown
	}
	if s.Beat > 0 {
		gs.Driver.Beat = s.Beat
		gs.Driver.Settle = s.Beat / 2
	}
	go gs.Loop()
	s.GameSessions[gs.Id] = gs
	log.Infof("GameServer created %s with %d players", gs.Id, opts.Players)
	return gs, nil
}

// sweep forgets races that ended more than Retain ago.
func (s *GameServer) sweep(now time.Time) {
	for id, gs := range s.GameSessions {
		if ended, over := gs.Ended(); over && now.Sub(ended) > s.Retain {
			gs.Stop()
			delete(s.GameSessions, id)
			log.Infof("GameServer swept %s", id)
		}
	}
}

func (r CreateRequest) apply(cfg config.Config) config.Config {
	if r.Players > 0 {
		cfg.Players = r.Players
	}
	if len(r.Names) > 0 {
		cfg.Names = r.Names
	}
	if r.Width > 0 {
		cfg.Width = r.Width
	}
	if r.Height > 0 {
		cfg.Height = r.Height
	}
	if r.MoveMs > 0 {
		cfg.MoveDuration = time.Duration(r.MoveMs) * time.Millisecond
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if r.Fog != nil {
		cfg.Fog = *r.Fog
	}
	if r.Specials != nil {
		cfg.Specials = *r.Specials
	}
	if r.Dynamic != nil {
		cfg.Dynamic = *r.Dynamic
	}
	if r.Tuning != "" {
		cfg.Tuning = r.Tuning
	}
	return cfg
}

// request hands req to Loop and waits for the answer.
func (s *GameServer) request(req GameRequest) (GameContextAwaiting, error) {
	gcas := make(chan GameContextAwaiting, 1)
	req.GameContextAwaiting = gcas
	select {
	case s.GameRequests <- req:
	case <-time.After(REQUEST_TIMEOUT):
		log.Warn("GameRequests TIMEOUTED")
		return GameContextAwaiting{}, ErrTimeout
	}
	select {
	case gca := <-gcas:
		return gca, nil
	case <-time.After(REQUEST_TIMEOUT):
		log.Warn("GameContextAwaiting TIMEOUTED")
		return GameContextAwaiting{}, ErrTimeout
	}
}

func (s *GameServer) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var create CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&create); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, HTTP_BAD_REQUEST, err)
			return
		}
		gca, err := s.request(GameRequest{Kind: REQ_CREATE, Create: create})
		if err != nil {
			writeError(w, HTTP_TIMEOUT, err)
			return
		}
		if gca.ResponseCode != GAME_CREATED {
			writeError(w, gca.ResponseCode.ToHttp(), gca.Err)
			return
		}
		writeJSON(w, gca.ResponseCode.ToHttp(), gca.GameSession.Info())
	}
}

func (s *GameServer) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gca, err := s.request(GameRequest{Kind: REQ_LIST})
		if err != nil {
			writeError(w, HTTP_TIMEOUT, err)
			return
		}
		infos := make([]RaceInfo, 0, len(gca.GameSessions))
		for _, gs := range gca.GameSessions {
			infos = append(infos, gs.Info())
		}
		writeJSON(w, HTTP_SUCCESS, infos)
	}
}

func (s *GameServer) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gca, err := s.request(GameRequest{Kind: REQ_DELETE, RaceId: way.Param(r.Context(), "id")})
		if err != nil {
			writeError(w, HTTP_TIMEOUT, err)
			return
		}
		w.WriteHeader(gca.ResponseCode.ToHttp())
	}
}

func (s *GameServer) HandleResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gca, err := s.request(GameRequest{Kind: REQ_FIND, RaceId: way.Param(r.Context(), "id")})
		if err != nil {
			writeError(w, HTTP_TIMEOUT, err)
			return
		}
		if gca.ResponseCode != GAME_READY {
			w.WriteHeader(gca.ResponseCode.ToHttp())
			return
		}
		gs := gca.GameSession
		if _, over := gs.Ended(); !over {
			w.WriteHeader(GAME_RUNNING.ToHttp())
			return
		}
		standings := gs.Race.Results()
		summary := gs.Race.Summary()
		writeJSON(w, HTTP_SUCCESS, ResultsResponse{
			RaceId:  gs.Id,
			Results: standings,
			Summary: summary,
			Text:    race.Export(standings, summary),
		})
	}
}

// HandleWatch upgrades to a websocket and streams the race until it ends or
// the watcher leaves.
func (s *GameServer) HandleWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gca, err := s.request(GameRequest{Kind: REQ_FIND, RaceId: way.Param(r.Context(), "id")})
		if err != nil {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		if gca.ResponseCode != GAME_READY {
			w.WriteHeader(gca.ResponseCode.ToHttp())
			return
		}
		gs := gca.GameSession

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client
			log.Printf("HandleWatch websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case gs.WatcherConnectRequests <- WatcherConnectRequest{Con: con, GameOver: gameOver}:
		case <-gs.closed:
			log.Printf("HandleWatch %s already closed", gs.Id)
			return
		case <-time.After(REQUEST_TIMEOUT):
			log.Warnf("HandleWatch %s TIMEOUTED", gs.Id)
			return
		}
		<-gameOver
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("response encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	writeJSON(w, code, map[string]string{"error": message})
}
