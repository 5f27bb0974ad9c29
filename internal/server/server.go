// Package server exposes the charades coordinator over HTTP and websockets.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kira8ke/GloHub/internal/config"
	"github.com/kira8ke/GloHub/internal/game"
	"github.com/kira8ke/GloHub/internal/hub"
)

// Pinger reports database health. A nil Pinger means the server runs on the
// in-memory store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	coord    *game.Coordinator
	hub      *hub.Hub
	db       Pinger
	cfg      config.Config
	upgrader websocket.Upgrader
}

func New(coord *game.Coordinator, h *hub.Hub, db Pinger, cfg config.Config) *Server {
	registerValidators()
	s := &Server{
		coord: coord,
		hub:   h,
		db:    db,
		cfg:   cfg,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.allowOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAny(s.cfg.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	api.POST("/games", s.handleCreateGame)
	api.DELETE("/games/:code", s.handleDeleteGame)
	api.POST("/games/:code/join", s.handleJoin)
	api.POST("/games/:code/start", s.handleStart)
	api.POST("/games/:code/spin", s.handleSpin)
	api.POST("/games/:code/round-end", s.handleRoundEnd)
	api.GET("/games/:code/state", s.handleState)
	api.GET("/games/:code/final-results", s.handleFinalResults)
	api.GET("/games/:code/word/:playerId", s.handleWord)
	api.GET("/games/:code/events", s.handleEvents)
	api.GET("/games/:code/qr", s.handleQR)
	api.POST("/players/:id/preparation-ready", s.handlePreparationReady)
	api.POST("/players/:id/action", s.handleAction)

	router.GET("/ws/games/:code", s.handleWebsocket)
	return router
}

func (s *Server) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || allowsAny(s.cfg.AllowedOrigins) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

func allowsAny(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return len(origins) == 0
}
