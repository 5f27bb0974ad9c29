package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kira8ke/GloHub/internal/config"
	"github.com/kira8ke/GloHub/internal/game"
	"github.com/kira8ke/GloHub/internal/hub"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(_ context.Context) error { return p.err }

// newApp wires a coordinator over the in-memory store. The long play
// duration keeps real timers from firing during a test and the long cooldown
// makes a second quick action always drop.
func newApp(t *testing.T, db Pinger) (*httptest.Server, *game.Coordinator) {
	t.Helper()
	cfg := config.Default()
	h := hub.New(time.Second)
	opts := game.DefaultOptions()
	opts.PlayDuration = time.Minute
	opts.TimerTick = 0
	opts.ActionCooldown = time.Minute
	opts.Selector = game.NewSelector(11)
	coord := game.NewCoordinator(game.NewMemoryStore(), h, opts)
	t.Cleanup(coord.Close)
	ts := newTestServer(t, New(coord, h, db, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts, coord
}
