package game

import "time"

// Arbiter validates scoring actions from the acting player.
type Arbiter struct {
	Cooldown      time.Duration
	CorrectPoints int
	WrongPoints   int
}

// Verdict is the outcome of an accepted action. Dropped actions arrived
// inside the cooldown window and change nothing.
type Verdict struct {
	Delta   int
	Dropped bool
}

// Evaluate checks an action without mutating state. Checks run in a fixed
// order: actor, phase, deadline, cooldown.
func (a Arbiter) Evaluate(state *State, playerID string, action Action, now time.Time) (Verdict, error) {
	if state.ActorID == "" || playerID != state.ActorID {
		return Verdict{}, ErrNotCurrentPlayer
	}
	if state.Phase != PhasePlaying {
		return Verdict{}, ErrNotPlaying
	}
	if state.Deadline.IsZero() || !now.Before(state.Deadline) {
		return Verdict{}, ErrPlayTimeExpired
	}
	if last, ok := state.lastAction[playerID]; ok && now.Sub(last) < a.Cooldown {
		return Verdict{Dropped: true}, nil
	}
	switch action {
	case ActionCorrect:
		return Verdict{Delta: a.CorrectPoints}, nil
	case ActionWrong:
		return Verdict{Delta: a.WrongPoints}, nil
	default:
		return Verdict{}, reject(ErrInvalidState, "Unknown action")
	}
}

// Apply records an accepted verdict on the in-memory player.
func (a Arbiter) Apply(state *State, player *Player, verdict Verdict, now time.Time) {
	if verdict.Dropped {
		return
	}
	player.Score += verdict.Delta
	state.lastAction[player.ID] = now
}
