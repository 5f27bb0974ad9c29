package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Options struct {
	PlayDuration      time.Duration
	ActionCooldown    time.Duration
	TimerTick         time.Duration
	FinishAfterTurns  int
	CorrectPoints     int
	WrongPoints       int
	JoinCodeAttempts  int
	FinishedRetention time.Duration

	Now      func() time.Time
	Schedule Scheduler
	Selector *Selector
	Words    WordSource
	NewCode  func() string
}

func DefaultOptions() Options {
	return Options{
		PlayDuration:      60 * time.Second,
		ActionCooldown:    800 * time.Millisecond,
		TimerTick:         time.Second,
		CorrectPoints:     5,
		WrongPoints:       -2,
		JoinCodeAttempts:  10,
		FinishedRetention: 10 * time.Minute,
	}
}

// Coordinator is the session state machine. Every operation on a game runs
// under that game's registry lock, including its broadcasts.
type Coordinator struct {
	store    Gateway
	hub      Broadcaster
	registry *Registry
	timers   *Timers
	selector *Selector
	arbiter  Arbiter
	words    WordSource
	opts     Options
	now      func() time.Time
	newCode  func() string
}

func NewCoordinator(store Gateway, hub Broadcaster, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Selector == nil {
		opts.Selector = NewSelector(0)
	}
	if opts.Words == nil {
		opts.Words = DefaultWords()
	}
	if opts.NewCode == nil {
		opts.NewCode = NewJoinCode
	}
	if opts.JoinCodeAttempts <= 0 {
		opts.JoinCodeAttempts = 10
	}
	if opts.PlayDuration <= 0 {
		opts.PlayDuration = 60 * time.Second
	}
	if opts.FinishedRetention <= 0 {
		opts.FinishedRetention = 10 * time.Minute
	}
	c := &Coordinator{
		store:    store,
		hub:      hub,
		timers:   NewTimers(opts.Now, opts.Schedule, opts.TimerTick),
		selector: opts.Selector,
		arbiter: Arbiter{
			Cooldown:      opts.ActionCooldown,
			CorrectPoints: opts.CorrectPoints,
			WrongPoints:   opts.WrongPoints,
		},
		words:   opts.Words,
		opts:    opts,
		now:     opts.Now,
		newCode: opts.NewCode,
	}
	c.registry = NewRegistry(c.load)
	return c
}

// Close stops every running countdown.
func (c *Coordinator) Close() {
	c.timers.StopAll()
}

func (c *Coordinator) Create(ctx context.Context, adminID, name string) (Game, error) {
	name = strings.TrimSpace(name)
	for attempt := 0; attempt < c.opts.JoinCodeAttempts; attempt++ {
		code := c.newCode()
		if _, err := c.store.GameByCode(ctx, code); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return Game{}, Unavailable("lookup game code", err)
		}
		game := Game{
			Code:      code,
			Name:      name,
			AdminID:   adminID,
			Status:    GameWaiting,
			CreatedAt: c.now(),
		}
		if game.Name == "" {
			game.Name = "Charades " + code
		}
		if err := c.store.CreateGame(ctx, &game); err != nil {
			if errors.Is(err, ErrDuplicateResource) {
				continue
			}
			return Game{}, Unavailable("create game", err)
		}
		state := newState(game)
		c.registry.Put(code, state)
		c.record(ctx, state, "game_created", "", "", EventPayload{GameCode: code})
		log.Info().Str("game_code", code).Str("game_id", game.ID).Msg("game created")
		return game, nil
	}
	log.Warn().Int("attempts", c.opts.JoinCodeAttempts).Msg("join code space exhausted")
	return Game{}, ErrCodeSpaceExhausted
}

func (c *Coordinator) Join(ctx context.Context, code, name, avatarID string) (Player, error) {
	code = NormalizeCode(code)
	name = strings.TrimSpace(name)
	var joined Player
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.Game.Status != GameWaiting {
			return ErrGameAlreadyStarted
		}
		for _, player := range state.Players {
			if strings.EqualFold(player.Name, name) {
				return ErrDuplicatePlayerName
			}
		}
		if err := state.takeFailure(gameKey()); err != nil {
			return err
		}
		player := Player{
			GameID:   state.Game.ID,
			Name:     name,
			AvatarID: avatarID,
			Status:   PlayerWaiting,
			JoinedAt: c.now(),
		}
		if err := c.store.CreatePlayer(ctx, &player); err != nil {
			return Unavailable("create player", err)
		}
		state.Players = append(state.Players, &player)
		joined = player
		c.record(ctx, state, "player_joined", "", player.ID, EventPayload{PlayerName: name})
		log.Info().Str("game_code", code).Str("player_id", player.ID).Msg("player joined")
		c.broadcast(ctx, state, NewGameStateUpdate(state, c.now()))
		return nil
	})
	return joined, err
}

func (c *Coordinator) Start(ctx context.Context, code, adminID string) error {
	code = NormalizeCode(code)
	return c.registry.With(ctx, code, func(state *State) error {
		if state.Game.AdminID != adminID {
			return ErrNotAdmin
		}
		if state.Game.Status != GameWaiting {
			return ErrGameAlreadyStarted
		}
		if err := state.takeFailure(gameKey()); err != nil {
			return err
		}
		now := c.now()
		state.Game.Status = GameInProgress
		state.Game.StartedAt = &now
		state.Phase = PhaseWaiting
		c.saveGame(ctx, state)
		c.record(ctx, state, "game_started", "", "", EventPayload{Phase: string(state.Phase)})
		log.Info().Str("game_code", code).Int("players", len(state.Players)).Msg("game started")
		c.broadcast(ctx, state, NewGameStateUpdate(state, now))
		return nil
	})
}

// State is the resync snapshot as viewerID sees it.
func (c *Coordinator) State(ctx context.Context, code, viewerID string) (Snapshot, error) {
	var snap Snapshot
	err := c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		snap = NewSnapshot(state, state.viewer(viewerID), c.now())
		return nil
	})
	return snap, err
}

func (c *Coordinator) FinalResults(ctx context.Context, code string) (Results, error) {
	var results Results
	err := c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		results = Rank(state.PlayerValues())
		return nil
	})
	return results, err
}

// WordFor returns the acting player's word to another player or an
// observer. It fails with ErrWordHidden unless actorID is acting right now
// and viewerID is someone else in the game.
func (c *Coordinator) WordFor(ctx context.Context, code, actorID, viewerID string) (string, error) {
	var word string
	err := c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		if state.Round == nil || state.ActorID == "" || actorID != state.ActorID {
			return ErrWordHidden
		}
		if !wordVisible(state.Phase, state.ActorID, state.viewer(viewerID)) {
			return ErrWordHidden
		}
		word = state.Round.Word
		return nil
	})
	return word, err
}

// Attach hands fn the current state update while the game is locked, so a
// client registered inside fn cannot miss a broadcast.
func (c *Coordinator) Attach(ctx context.Context, code, playerID string, fn func(GameStateUpdate) error) error {
	return c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		if state.viewer(playerID) != playerID {
			return ErrPlayerNotFound
		}
		return fn(NewGameStateUpdate(state, c.now()))
	})
}

// Refresh returns a state update for one client, used when it asks to resync.
func (c *Coordinator) Refresh(ctx context.Context, code string) (GameStateUpdate, error) {
	var update GameStateUpdate
	err := c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		update = NewGameStateUpdate(state, c.now())
		return nil
	})
	return update, err
}

func (c *Coordinator) Events(ctx context.Context, code string) ([]EventRecord, error) {
	var gameID string
	err := c.registry.With(ctx, NormalizeCode(code), func(state *State) error {
		gameID = state.Game.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	events, err := c.store.ListEvents(ctx, gameID)
	if err != nil {
		return nil, Unavailable("list events", err)
	}
	return events, nil
}

// Delete removes a game everywhere and drops its connected clients.
func (c *Coordinator) Delete(ctx context.Context, code, adminID string) error {
	code = NormalizeCode(code)
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.Game.AdminID != adminID {
			return ErrNotAdmin
		}
		if err := c.store.DeleteGame(ctx, state.Game.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return Unavailable("delete game", err)
		}
		c.timers.Stop(code)
		c.registry.Remove(code)
		return nil
	})
	if err != nil {
		return err
	}
	if c.hub != nil {
		c.hub.Disconnect(code)
	}
	log.Info().Str("game_code", code).Msg("game deleted")
	return nil
}

func (c *Coordinator) broadcast(ctx context.Context, state *State, events ...Event) {
	if c.hub == nil {
		return
	}
	for _, ev := range events {
		c.hub.Broadcast(ctx, state.Game.Code, ev)
	}
}
