package game

import (
	"context"
	"time"
)

// State is the authoritative in-memory view of one live game. It is only
// touched while the registry holds the game's lock.
type State struct {
	Game     Game
	Players  []*Player
	Round    *Round
	Phase    Phase
	ActorID  string
	Deadline time.Time

	lastAction map[string]time.Time
	pending    map[string]*pendingWrite
}

// pendingWrite is a persistence write that failed after its in-memory
// mutation was applied. retry replays the write from the captured values.
type pendingWrite struct {
	err      error
	reported bool
	retry    func(ctx context.Context) error
}

func newState(game Game) *State {
	phase := PhaseWaiting
	if game.Status == GameFinished {
		phase = PhaseGameFinished
	}
	return &State{
		Game:       game,
		Phase:      phase,
		lastAction: make(map[string]time.Time),
		pending:    make(map[string]*pendingWrite),
	}
}

func (s *State) Player(id string) *Player {
	for _, player := range s.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// viewer resolves who is looking at the game. Ids that are neither a
// player nor Observer count as anonymous.
func (s *State) viewer(id string) string {
	if id == Observer || s.Player(id) != nil {
		return id
	}
	return ""
}

func (s *State) Actor() *Player {
	if s.ActorID == "" {
		return nil
	}
	return s.Player(s.ActorID)
}

func (s *State) Remaining(now time.Time) time.Duration {
	if s.Phase != PhasePlaying || s.Deadline.IsZero() {
		return 0
	}
	if remaining := s.Deadline.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// PlayerValues copies the roster in join order.
func (s *State) PlayerValues() []Player {
	list := make([]Player, 0, len(s.Players))
	for _, player := range s.Players {
		list = append(list, *player)
	}
	return list
}

func (s *State) Clone() *State {
	clone := &State{
		Game:       s.Game,
		Phase:      s.Phase,
		ActorID:    s.ActorID,
		Deadline:   s.Deadline,
		lastAction: make(map[string]time.Time, len(s.lastAction)),
		pending:    make(map[string]*pendingWrite, len(s.pending)),
	}
	for _, player := range s.Players {
		copied := *player
		clone.Players = append(clone.Players, &copied)
	}
	if s.Round != nil {
		round := *s.Round
		clone.Round = &round
	}
	for id, at := range s.lastAction {
		clone.lastAction[id] = at
	}
	for key, write := range s.pending {
		copied := *write
		clone.pending[key] = &copied
	}
	return clone
}

// PendingWrites reports how many failed writes await reconciliation.
func (s *State) PendingWrites() int {
	return len(s.pending)
}

func (s *State) markFailed(key string, err error, retry func(ctx context.Context) error) {
	s.pending[key] = &pendingWrite{err: err, retry: retry}
}

// takeFailure surfaces, once, a failed write on any of keys. The write stays
// pending until reconciliation succeeds.
func (s *State) takeFailure(keys ...string) error {
	for _, key := range keys {
		write, ok := s.pending[key]
		if !ok || write.reported {
			continue
		}
		write.reported = true
		return Unavailable("deferred write "+key, write.err)
	}
	return nil
}

func gameKey() string { return "game" }

func playerKey(id string) string { return "player:" + id }

func roundKey(id string) string { return "round:" + id }
