package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// load rebuilds a game that is not in memory, for example after a restart.
// A round that was playing resumes its countdown from the stored deadline; a
// round without one goes back to preparing.
func (c *Coordinator) load(ctx context.Context, code string) (*State, error) {
	game, err := c.store.GameByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, Unavailable("load game", err)
	}
	players, err := c.store.ListPlayers(ctx, game.ID)
	if err != nil {
		return nil, Unavailable("load players", err)
	}
	state := newState(game)
	for i := range players {
		state.Players = append(state.Players, &players[i])
	}

	round, err := c.store.LatestRound(ctx, game.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Info().Str("game_code", code).Msg("game rehydrated")
		return state, nil
	case err != nil:
		return nil, Unavailable("load round", err)
	}
	state.Round = &round
	if round.Status == RoundInProgress && game.Status == GameInProgress {
		state.ActorID = round.PlayerID
		if round.DeadlineAt != nil {
			state.Deadline = *round.DeadlineAt
			state.Phase = PhasePlaying
			c.timers.StartAt(code, round.ID, state.Deadline, c.hooks(code, round.ID))
		} else {
			state.Phase = PhasePreparing
		}
	}
	log.Info().Str("game_code", code).Str("phase", string(state.Phase)).Msg("game rehydrated")
	return state, nil
}
