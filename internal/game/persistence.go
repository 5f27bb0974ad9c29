package game

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Writes after an in-memory mutation are best effort. A failure is logged and
// parked on the row's key; the next operation that depends on the row
// reports it, and Reconcile replays the write.

func (c *Coordinator) saveGame(ctx context.Context, state *State) {
	game := state.Game
	c.save(ctx, state, gameKey(), func(ctx context.Context) error {
		return c.store.UpdateGame(ctx, game)
	})
}

func (c *Coordinator) savePlayer(ctx context.Context, state *State, player *Player) {
	row := *player
	c.save(ctx, state, playerKey(row.ID), func(ctx context.Context) error {
		return c.store.UpdatePlayer(ctx, row)
	})
}

func (c *Coordinator) saveRound(ctx context.Context, state *State, round *Round) {
	row := *round
	c.save(ctx, state, roundKey(row.ID), func(ctx context.Context) error {
		return c.store.UpdateRound(ctx, row)
	})
}

func (c *Coordinator) save(ctx context.Context, state *State, key string, write func(ctx context.Context) error) {
	if err := write(ctx); err != nil {
		log.Warn().Err(err).Str("game_code", state.Game.Code).Str("row", key).
			Msg("persist failed, in-memory state kept")
		state.markFailed(key, err, write)
		return
	}
	delete(state.pending, key)
}

func (c *Coordinator) record(ctx context.Context, state *State, eventType, roundID, playerID string, payload EventPayload) {
	payload.GameCode = state.Game.Code
	err := c.store.RecordEvent(ctx, EventRecord{
		GameID:    state.Game.ID,
		RoundID:   roundID,
		PlayerID:  playerID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: c.now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("game_code", state.Game.Code).Str("event", eventType).Msg("record event failed")
	}
}

// Reconcile replays every parked write and returns how many still fail.
func (c *Coordinator) Reconcile(ctx context.Context) int {
	failing := 0
	for _, code := range c.registry.Codes() {
		err := c.registry.With(ctx, code, func(state *State) error {
			for key, write := range state.pending {
				if err := write.retry(ctx); err != nil {
					failing++
					log.Warn().Err(err).Str("game_code", code).Str("row", key).Msg("reconcile write failed")
					continue
				}
				delete(state.pending, key)
				log.Info().Str("game_code", code).Str("row", key).Msg("reconciled")
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("game_code", code).Msg("reconcile skipped game")
		}
	}
	return failing
}

// Sweep evicts finished games that ended more than FinishedRetention ago and
// have no parked writes. An evicted game reloads from storage on next use.
func (c *Coordinator) Sweep(ctx context.Context) int {
	cutoff := c.now().Add(-c.opts.FinishedRetention)
	evicted := 0
	for _, code := range c.registry.Codes() {
		err := c.registry.With(ctx, code, func(state *State) error {
			finishedAt := state.Game.FinishedAt
			if state.Phase != PhaseGameFinished || len(state.pending) > 0 {
				return nil
			}
			if finishedAt == nil || finishedAt.After(cutoff) {
				return nil
			}
			c.timers.Stop(code)
			c.registry.Remove(code)
			evicted++
			return nil
		})
		if err != nil {
			log.Debug().Err(err).Str("game_code", code).Msg("sweep skipped game")
		}
	}
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Msg("finished games evicted")
	}
	return evicted
}
