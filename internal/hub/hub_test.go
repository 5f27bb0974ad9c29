package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira8ke/GloHub/internal/game"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []string
	failing  bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.messages = append(c.messages, string(data))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func TestBroadcastRendersPerRecipient(t *testing.T) {
	h := New(time.Second)
	actor := &fakeConn{}
	viewer := &fakeConn{}
	display := &fakeConn{}
	anonymous := &fakeConn{}
	other := &fakeConn{}
	h.Register("ABCDEF", "actor", actor)
	h.Register("ABCDEF", "viewer", viewer)
	h.Register("ABCDEF", game.Observer, display)
	h.Register("ABCDEF", "", anonymous)
	h.Register("GHJKLM", "viewer", other)

	h.Broadcast(context.Background(), "ABCDEF", game.GamePlaying{
		PlayerID: "actor",
		Word:     "Surfing",
		Duration: time.Minute,
	})

	require.Len(t, actor.Messages(), 1)
	assert.NotContains(t, actor.Messages()[0], "Surfing")
	assert.Contains(t, actor.Messages()[0], `"type":"GAME_PLAYING"`)
	assert.Contains(t, viewer.Messages()[0], `"word":"Surfing"`)
	assert.Contains(t, display.Messages()[0], `"word":"Surfing"`)
	assert.Contains(t, anonymous.Messages()[0], `"word":null`)
	assert.Empty(t, other.Messages())
}

func TestBroadcastDropsFailedClients(t *testing.T) {
	h := New(time.Second)
	healthy := &fakeConn{}
	broken := &fakeConn{failing: true}
	h.Register("ABCDEF", "a", healthy)
	h.Register("ABCDEF", "b", broken)

	h.Broadcast(context.Background(), "ABCDEF", game.TimerTick{RemainingMS: 1000})

	assert.Equal(t, 1, h.Count("ABCDEF"))
	assert.True(t, broken.closed)
	assert.Equal(t, []string{`{"type":"TIMER_TICK","payload":{"time_remaining_ms":1000}}`}, healthy.Messages())
}

func TestDisconnectClosesGame(t *testing.T) {
	h := New(time.Second)
	first := &fakeConn{}
	second := &fakeConn{}
	client := h.Register("ABCDEF", "a", first)
	h.Register("ABCDEF", "b", second)

	h.Disconnect("ABCDEF")
	assert.Zero(t, h.Count("ABCDEF"))
	assert.True(t, first.closed)
	assert.True(t, second.closed)

	h.Unregister(client)
	assert.Zero(t, h.Count("ABCDEF"))
}

func TestSendWritesPongWithoutPayload(t *testing.T) {
	h := New(time.Second)
	conn := &fakeConn{}
	client := h.Register("ABCDEF", "a", conn)
	require.NoError(t, h.Send(client, game.Pong{}))
	assert.Equal(t, []string{`{"type":"PONG"}`}, conn.Messages())
}
