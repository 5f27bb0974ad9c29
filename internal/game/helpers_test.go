package game

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAdmin = "admin-1"

// fakeClock is a manual clock and Scheduler. Callbacks only run from Advance.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*scheduledCall
}

type scheduledCall struct {
	at      time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Schedule(d time.Duration, f func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	call := &scheduledCall{at: c.now.Add(d), seq: len(c.pending), f: f}
	c.pending = append(c.pending, call)
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		active := !call.stopped && !call.fired
		call.stopped = true
		return active
	}
}

// Advance moves time forward, running due callbacks in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		due := make([]*scheduledCall, 0)
		for _, call := range c.pending {
			if !call.stopped && !call.fired && !call.at.After(target) {
				due = append(due, call)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at.Equal(due[j].at) {
				return due[i].seq < due[j].seq
			}
			return due[i].at.Before(due[j].at)
		})
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// Skip moves time forward without running callbacks, as if a timer were late.
func (c *fakeClock) Skip(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingHub struct {
	mu           sync.Mutex
	events       []Event
	disconnected []string
}

func (h *recordingHub) Broadcast(_ context.Context, _ string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) Disconnect(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnected = append(h.disconnected, code)
}

func (h *recordingHub) Types() []EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]EventType, 0, len(h.events))
	for _, event := range h.events {
		types = append(types, event.Type())
	}
	return types
}

func (h *recordingHub) Count(eventType EventType) int {
	count := 0
	for _, t := range h.Types() {
		if t == eventType {
			count++
		}
	}
	return count
}

func (h *recordingHub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

// flakyStore fails player updates on demand.
type flakyStore struct {
	*MemoryStore
	mock.Mock
}

func (s *flakyStore) UpdatePlayer(ctx context.Context, player Player) error {
	if err := s.Called(player.ID).Error(0); err != nil {
		return err
	}
	return s.MemoryStore.UpdatePlayer(ctx, player)
}

type fixture struct {
	coord *Coordinator
	store *MemoryStore
	hub   *recordingHub
	clock *fakeClock
}

func newFixture(t *testing.T, store Gateway, tweak ...func(*Options)) *fixture {
	t.Helper()
	clock := newFakeClock()
	hub := &recordingHub{}
	opts := DefaultOptions()
	opts.TimerTick = 0
	opts.Now = clock.Now
	opts.Schedule = clock.Schedule
	opts.Selector = NewSelector(7)
	for _, fn := range tweak {
		fn(&opts)
	}
	mem, _ := store.(*MemoryStore)
	if mem == nil {
		if flaky, ok := store.(*flakyStore); ok {
			mem = flaky.MemoryStore
		}
	}
	coord := NewCoordinator(store, hub, opts)
	t.Cleanup(coord.Close)
	return &fixture{coord: coord, store: mem, hub: hub, clock: clock}
}

// startedGame creates a game, joins the named players and starts it.
func (f *fixture) startedGame(t *testing.T, names ...string) (Game, []Player) {
	t.Helper()
	ctx := context.Background()
	game, err := f.coord.Create(ctx, testAdmin, "")
	require.NoError(t, err)
	players := make([]Player, 0, len(names))
	for _, name := range names {
		player, err := f.coord.Join(ctx, game.Code, name, "avatar-"+name)
		require.NoError(t, err)
		players = append(players, player)
	}
	require.NoError(t, f.coord.Start(ctx, game.Code, testAdmin))
	return game, players
}

func (f *fixture) state(t *testing.T, code string) *State {
	t.Helper()
	state, err := f.coord.registry.Get(context.Background(), code)
	require.NoError(t, err)
	return state
}

// playTurn spins, confirms preparation and lets the admin end the round.
func (f *fixture) playTurn(t *testing.T, code string) SpinResult {
	t.Helper()
	ctx := context.Background()
	spin, err := f.coord.Spin(ctx, code, testAdmin)
	require.NoError(t, err)
	_, err = f.coord.PreparationReady(ctx, code, spin.SelectedPlayerID)
	require.NoError(t, err)
	_, err = f.coord.RoundEnd(ctx, code, testAdmin)
	require.NoError(t, err)
	return spin
}

func activeCount(state *State) int {
	count := 0
	for _, player := range state.Players {
		if player.Status == PlayerPreparing || player.Status == PlayerPlaying {
			count++
		}
	}
	return count
}
