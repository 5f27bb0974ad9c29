package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kira8ke/GloHub/internal/game"
	"github.com/kira8ke/GloHub/internal/hub"
)

const maxInboundMessage = 4096

// Inbound message types a client may send on its game socket.
const (
	inboundGetGameState = "get_game_state"
	inboundPing         = "ping"
	inboundTimeUp       = "time_up"
)

type inboundMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	code := game.NormalizeCode(c.Param("code"))
	var query struct {
		PlayerID string `form:"player_id" binding:"max=64"`
		Observer bool   `form:"observer"`
	}
	if !bindQuery(c, &query, nil, "") {
		return
	}
	playerID := viewerQuery{ViewerID: query.PlayerID, Observer: query.Observer}.viewer()
	if _, err := s.coord.State(c.Request.Context(), code, playerID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Str("game_code", code).Msg("ws upgrade failed")
		return
	}
	conn.SetReadLimit(maxInboundMessage)

	ctx := context.WithoutCancel(c.Request.Context())
	var client *hub.Client
	err = s.coord.Attach(ctx, code, playerID, func(update game.GameStateUpdate) error {
		client = s.hub.Register(code, playerID, conn)
		if err := s.hub.Send(client, game.ConnectionEstablished{Code: code, PlayerID: query.PlayerID}); err != nil {
			return err
		}
		return s.hub.Send(client, update)
	})
	if err != nil {
		log.Debug().Err(err).Str("game_code", code).Str("player_id", playerID).Msg("ws attach failed")
		if client != nil {
			s.hub.Unregister(client)
			return
		}
		_ = conn.WriteJSON(game.Render(game.ErrorEvent{Message: game.Message(err)}, playerID))
		_ = conn.Close()
		return
	}
	log.Info().Str("game_code", code).Str("player_id", playerID).Str("remote", c.Request.RemoteAddr).Msg("ws connected")
	s.readLoop(ctx, client, conn)
}

// readLoop serves one client's inbound messages until the socket closes.
func (s *Server) readLoop(ctx context.Context, client *hub.Client, conn *websocket.Conn) {
	defer s.hub.Unregister(client)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("game_code", client.Code).Str("client_id", client.ID).Msg("ws disconnected")
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(client, game.ErrorEvent{Message: "messages must be JSON objects"})
			continue
		}
		s.dispatch(ctx, client, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, client *hub.Client, msg inboundMessage) {
	switch msg.Type {
	case inboundGetGameState:
		update, err := s.coord.Refresh(ctx, client.Code)
		if err != nil {
			s.reply(client, game.ErrorEvent{Message: game.Message(err)})
			return
		}
		s.reply(client, update)
	case inboundPing:
		s.reply(client, game.Pong{})
	case inboundTimeUp:
		playerID := client.PlayerID
		if playerID == "" || playerID == game.Observer {
			playerID = msg.PlayerID
		}
		if err := s.coord.TimeUp(ctx, client.Code, playerID); err != nil && !errors.Is(err, game.ErrTimerRunning) {
			s.reply(client, game.ErrorEvent{Message: game.Message(err)})
		}
	default:
		s.reply(client, game.ErrorEvent{Message: "unknown message type"})
	}
}

func (s *Server) reply(client *hub.Client, ev game.Event) {
	if err := s.hub.Send(client, ev); err != nil {
		log.Debug().Err(err).Str("client_id", client.ID).Msg("ws reply failed")
	}
}
