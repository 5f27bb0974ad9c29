// Package hub fans game events out to the websocket clients of each game.
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/kira8ke/GloHub/internal/game"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one registered connection. PlayerID is game.Observer for a
// shared display and empty for an anonymous socket.
type Client struct {
	ID       string
	Code     string
	PlayerID string

	conn    Conn
	writeMu sync.Mutex
}

type Hub struct {
	mu           sync.Mutex
	groups       map[string]map[string]*Client
	writeTimeout time.Duration
}

func New(writeTimeout time.Duration) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Hub{
		groups:       make(map[string]map[string]*Client),
		writeTimeout: writeTimeout,
	}
}

func (h *Hub) Register(code, playerID string, conn Conn) *Client {
	client := &Client{
		ID:       uuid.NewString(),
		Code:     code,
		PlayerID: playerID,
		conn:     conn,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[string]*Client)
		h.groups[code] = group
	}
	group[client.ID] = client
	log.Debug().Str("game_code", code).Str("player_id", playerID).Str("client_id", client.ID).Msg("ws client registered")
	return client
}

// Unregister drops the client and closes its connection.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	group := h.groups[client.Code]
	if _, ok := group[client.ID]; ok {
		delete(group, client.ID)
		if len(group) == 0 {
			delete(h.groups, client.Code)
		}
	}
	h.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast renders ev for every client of the game and writes it. It returns
// after every write has finished or failed; failed clients are dropped.
func (h *Hub) Broadcast(ctx context.Context, code string, ev game.Event) {
	clients := h.clients(code)
	if len(clients) == 0 {
		return
	}
	var group errgroup.Group
	for _, client := range clients {
		group.Go(func() error {
			if err := h.Send(client, ev); err != nil {
				log.Debug().Err(err).Str("game_code", code).Str("client_id", client.ID).Msg("ws write failed")
				h.Unregister(client)
			}
			return nil
		})
	}
	_ = group.Wait()
}

// Send writes ev to a single client.
func (h *Hub) Send(client *Client, ev game.Event) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	if err := client.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return client.conn.WriteJSON(game.Render(ev, client.PlayerID))
}

// Disconnect closes every client of the game.
func (h *Hub) Disconnect(code string) {
	h.mu.Lock()
	group := h.groups[code]
	delete(h.groups, code)
	h.mu.Unlock()
	for _, client := range group {
		_ = client.conn.Close()
	}
}

func (h *Hub) Count(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[code])
}

func (h *Hub) clients(code string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	clients := make([]*Client, 0, len(group))
	for _, client := range group {
		clients = append(clients, client)
	}
	return clients
}
