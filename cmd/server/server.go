package main

import (
	"context"
	"net/http"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/server"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ApplyLogLevel()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	Server := Server{
		GameServer: server.NewGameServer(cfg),
	}
	go Server.GameServer.Loop(context.Background())
	Server.routes()
	log.Printf("Listening on port %s", cfg.Port)
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, Server.router))
}
