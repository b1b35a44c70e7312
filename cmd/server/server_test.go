package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/server"
)

func TestRoutes(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	s := Server{GameServer: server.NewGameServer(cfg)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.GameServer.Loop(ctx)
	s.routes()

	ts := httptest.NewServer(s.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + URI_HEALTH)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + server.URI_RACES)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/races/missing/results")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
