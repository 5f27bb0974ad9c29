package game

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

type SpinResult struct {
	RoundID            string `json:"round_id"`
	RoundNumber        int    `json:"round_number"`
	SelectedPlayerID   string `json:"selected_player_id"`
	SelectedPlayerName string `json:"selected_player_name"`
	AvatarID           string `json:"avatar_id"`
	Category           string `json:"category"`
}

type ActionResult struct {
	Action     Action `json:"action"`
	ScoreDelta int    `json:"score_change"`
	NewScore   int    `json:"new_score"`
	Dropped    bool   `json:"dropped"`
}

// Spin picks the next actor, category and word and opens a round. The round
// row is written before any in-memory change so a storage failure leaves the
// game untouched.
func (c *Coordinator) Spin(ctx context.Context, code, adminID string) (SpinResult, error) {
	code = NormalizeCode(code)
	var result SpinResult
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.Game.AdminID != adminID {
			return ErrNotAdmin
		}
		switch state.Game.Status {
		case GameWaiting:
			return ErrGameNotStarted
		case GameFinished:
			return ErrGameOver
		}
		if state.Phase != PhaseWaiting {
			return ErrSpinUnavailable
		}
		keys := []string{gameKey()}
		if state.Round != nil {
			keys = append(keys, roundKey(state.Round.ID))
		}
		if err := state.takeFailure(keys...); err != nil {
			return err
		}

		actor, err := c.selector.SelectPlayer(state.Players)
		if err != nil {
			return err
		}
		used, err := c.store.UsedCategories(ctx, state.Game.ID)
		if err != nil {
			return Unavailable("used categories", err)
		}
		categories, err := c.words.Categories(ctx)
		if err != nil {
			return Unavailable("load categories", err)
		}
		category := c.selector.SelectCategory(used, categories)
		words, err := c.words.WordsIn(ctx, category)
		if err != nil {
			return Unavailable("load words", err)
		}

		number := 1
		if state.Round != nil {
			number = state.Round.Number + 1
		}
		round := Round{
			GameID:    state.Game.ID,
			Number:    number,
			PlayerID:  actor.ID,
			Word:      c.selector.SelectWord(words),
			Category:  category,
			Status:    RoundInProgress,
			CreatedAt: c.now(),
		}
		if err := c.store.CreateRound(ctx, &round); err != nil {
			return Unavailable("create round", err)
		}

		state.Phase = PhaseWheelSpinning
		c.broadcast(ctx, state, WheelSpinning{RoundNumber: number})

		state.Round = &round
		state.ActorID = actor.ID
		state.Deadline = time.Time{}
		state.Phase = PhasePlayerSelected
		c.broadcast(ctx, state, PlayerSelected{
			RoundID:     round.ID,
			RoundNumber: number,
			PlayerID:    actor.ID,
			PlayerName:  actor.Name,
			AvatarID:    actor.AvatarID,
			Category:    round.Category,
		})

		actor.Status = PlayerPreparing
		state.Phase = PhasePreparing
		c.savePlayer(ctx, state, actor)
		c.record(ctx, state, "round_started", round.ID, actor.ID, EventPayload{
			Round:    number,
			Category: round.Category,
		})
		log.Info().Str("game_code", code).Str("round_id", round.ID).Str("player_id", actor.ID).
			Int("round_number", number).Msg("player selected")
		c.broadcast(ctx, state,
			PlayerPreparingEvent{PlayerID: actor.ID, PlayerName: actor.Name, Category: round.Category},
			NewGameStateUpdate(state, c.now()),
		)

		result = SpinResult{
			RoundID:            round.ID,
			RoundNumber:        number,
			SelectedPlayerID:   actor.ID,
			SelectedPlayerName: actor.Name,
			AvatarID:           actor.AvatarID,
			Category:           round.Category,
		}
		return nil
	})
	return result, err
}

// PreparationReady starts the play countdown. Confirming again while playing
// reports the time left without restarting it.
func (c *Coordinator) PreparationReady(ctx context.Context, code, playerID string) (time.Duration, error) {
	code = NormalizeCode(code)
	var duration time.Duration
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.ActorID == "" || playerID != state.ActorID {
			return ErrNotCurrentPlayer
		}
		if state.Phase == PhasePlaying {
			duration = state.Remaining(c.now())
			return nil
		}
		if state.Phase != PhasePreparing || state.Round == nil {
			return ErrNotPreparing
		}
		actor := state.Actor()
		if actor == nil {
			return ErrPlayerNotFound
		}
		if err := state.takeFailure(playerKey(actor.ID), roundKey(state.Round.ID)); err != nil {
			return err
		}

		round := state.Round
		deadline := c.timers.Start(code, round.ID, c.opts.PlayDuration, c.hooks(code, round.ID))
		state.Deadline = deadline
		round.DeadlineAt = &deadline
		actor.Status = PlayerPlaying
		state.Phase = PhasePlaying
		c.savePlayer(ctx, state, actor)
		c.saveRound(ctx, state, round)
		c.record(ctx, state, "round_playing", round.ID, actor.ID, EventPayload{Phase: string(state.Phase)})
		log.Info().Str("game_code", code).Str("round_id", round.ID).Str("player_id", actor.ID).Msg("play timer started")
		c.broadcast(ctx, state,
			GamePlaying{
				PlayerID:   actor.ID,
				PlayerName: actor.Name,
				Category:   round.Category,
				Word:       round.Word,
				Duration:   c.opts.PlayDuration,
				Deadline:   deadline,
			},
			NewGameStateUpdate(state, c.now()),
		)
		duration = c.opts.PlayDuration
		return nil
	})
	return duration, err
}

// SubmitAction scores the actor's correct or wrong call. An action past the
// deadline fails with ErrPlayTimeExpired and closes the round.
func (c *Coordinator) SubmitAction(ctx context.Context, code, playerID string, action Action) (ActionResult, error) {
	code = NormalizeCode(code)
	result := ActionResult{Action: action}
	err := c.registry.With(ctx, code, func(state *State) error {
		now := c.now()
		verdict, err := c.arbiter.Evaluate(state, playerID, action, now)
		if errors.Is(err, ErrTimeExpired) {
			c.completeRound(ctx, state, "time_expired")
			return err
		}
		if err != nil {
			return err
		}
		actor := state.Actor()
		if actor == nil {
			return ErrPlayerNotFound
		}
		if verdict.Dropped {
			result.Dropped = true
			result.NewScore = actor.Score
			return nil
		}
		if err := state.takeFailure(playerKey(actor.ID)); err != nil {
			return err
		}
		c.arbiter.Apply(state, actor, verdict, now)
		c.savePlayer(ctx, state, actor)
		c.record(ctx, state, "player_action", state.Round.ID, actor.ID, EventPayload{
			Action: string(action),
			Delta:  verdict.Delta,
			Score:  actor.Score,
		})
		c.broadcast(ctx, state,
			ActionRecorded{PlayerID: actor.ID, Action: action, Delta: verdict.Delta, Score: actor.Score},
			ScoreUpdate{Players: viewPlayers(state.Players)},
		)
		result.ScoreDelta = verdict.Delta
		result.NewScore = actor.Score
		return nil
	})
	return result, err
}

// RoundEnd lets the admin close the current round. Ending a round that is
// already complete changes nothing.
func (c *Coordinator) RoundEnd(ctx context.Context, code, adminID string) (bool, error) {
	code = NormalizeCode(code)
	var finished bool
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.Game.AdminID != adminID {
			return ErrNotAdmin
		}
		if state.Round == nil {
			return ErrRoundNotFound
		}
		if state.Round.Status == RoundComplete {
			finished = c.turnsComplete(state)
			return nil
		}
		if err := state.takeFailure(roundKey(state.Round.ID)); err != nil {
			return err
		}
		c.completeRound(ctx, state, "admin")
		finished = state.Game.Status == GameFinished
		return nil
	})
	return finished, err
}

// TimeUp is the client's report that the countdown ran out. It completes the
// round only when the deadline has really passed.
func (c *Coordinator) TimeUp(ctx context.Context, code, playerID string) error {
	code = NormalizeCode(code)
	return c.registry.With(ctx, code, func(state *State) error {
		if state.Player(playerID) == nil {
			return ErrPlayerNotFound
		}
		if state.Round == nil {
			return ErrRoundNotFound
		}
		if state.Round.Status == RoundComplete {
			return nil
		}
		if state.Phase != PhasePlaying {
			return ErrNotPlaying
		}
		if c.now().Before(state.Deadline) {
			return ErrTimerRunning
		}
		c.completeRound(ctx, state, "time_up")
		return nil
	})
}

func (c *Coordinator) hooks(code, roundID string) TimerHooks {
	return TimerHooks{
		OnTick:   func(remaining time.Duration) { c.tick(code, roundID, remaining) },
		OnExpire: func() { c.expire(code, roundID) },
	}
}

func (c *Coordinator) tick(code, roundID string, remaining time.Duration) {
	ctx := context.Background()
	_ = c.registry.With(ctx, code, func(state *State) error {
		if state.Phase != PhasePlaying || state.Round == nil || state.Round.ID != roundID {
			return nil
		}
		c.broadcast(ctx, state, TimerTick{RemainingMS: remaining.Milliseconds()})
		return nil
	})
}

func (c *Coordinator) expire(code, roundID string) {
	ctx := context.Background()
	err := c.registry.With(ctx, code, func(state *State) error {
		if state.Phase != PhasePlaying || state.Round == nil || state.Round.ID != roundID {
			return nil
		}
		c.completeRound(ctx, state, "timer")
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("game_code", code).Str("round_id", roundID).Msg("timer expiry failed")
	}
}

// completeRound closes the current round once. The actor is marked as having
// played and the game either finishes or returns to waiting.
func (c *Coordinator) completeRound(ctx context.Context, state *State, reason string) {
	round := state.Round
	if round == nil || round.Status == RoundComplete {
		return
	}
	c.timers.Stop(state.Game.Code)
	round.Status = RoundComplete
	c.saveRound(ctx, state, round)

	event := RoundCompleteEvent{
		RoundID:     round.ID,
		RoundNumber: round.Number,
		PlayerID:    round.PlayerID,
		Word:        round.Word,
		Reason:      reason,
	}
	if actor := state.Actor(); actor != nil {
		actor.HasPlayed = true
		actor.Status = PlayerWaiting
		c.savePlayer(ctx, state, actor)
		event.PlayerName = actor.Name
		event.Score = actor.Score
	}
	state.ActorID = ""
	state.Deadline = time.Time{}
	state.Phase = PhaseRoundComplete
	event.AllPlayed = c.turnsComplete(state)

	c.record(ctx, state, "round_completed", round.ID, round.PlayerID, EventPayload{
		Round:  round.Number,
		Reason: reason,
	})
	log.Info().Str("game_code", state.Game.Code).Str("round_id", round.ID).Str("reason", reason).
		Bool("all_played", event.AllPlayed).Msg("round complete")
	c.broadcast(ctx, state, event)

	if event.AllPlayed {
		c.finish(ctx, state)
	} else {
		state.Phase = PhaseWaiting
	}
	c.broadcast(ctx, state, NewGameStateUpdate(state, c.now()))
}

// turnsComplete applies the finish policy: everyone has played, or at least
// FinishAfterTurns players have when that threshold is set.
func (c *Coordinator) turnsComplete(state *State) bool {
	played := 0
	for _, player := range state.Players {
		if player.HasPlayed {
			played++
		}
	}
	if played == len(state.Players) {
		return true
	}
	return c.opts.FinishAfterTurns > 0 && played >= c.opts.FinishAfterTurns
}

func (c *Coordinator) finish(ctx context.Context, state *State) {
	now := c.now()
	state.Game.Status = GameFinished
	state.Game.FinishedAt = &now
	state.Phase = PhaseGameFinished
	c.saveGame(ctx, state)
	results := Rank(state.PlayerValues())
	c.record(ctx, state, "game_finished", "", "", EventPayload{Phase: string(state.Phase)})
	log.Info().Str("game_code", state.Game.Code).Int("players", results.TotalPlayers).Msg("game finished")
	c.broadcast(ctx, state, GameFinishedEvent{Results: results})
}
