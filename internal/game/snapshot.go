package game

import "time"

type GameView struct {
	ID         string     `json:"id"`
	Code       string     `json:"game_code"`
	Name       string     `json:"name"`
	AdminID    string     `json:"admin_id"`
	Status     GameStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type PlayerView struct {
	ID        string       `json:"id"`
	Name      string       `json:"player_name"`
	AvatarID  string       `json:"avatar_id"`
	Score     int          `json:"score"`
	HasPlayed bool         `json:"has_played"`
	Status    PlayerStatus `json:"status"`
}

// RoundView is a round as one viewer may see it. Word is empty when the
// viewer must not learn it.
type RoundView struct {
	ID       string      `json:"id"`
	Number   int         `json:"round_number"`
	PlayerID string      `json:"selected_player_id"`
	Category string      `json:"category"`
	Word     string      `json:"word,omitempty"`
	Status   RoundStatus `json:"status"`
}

// Snapshot is the full resync payload for one viewer.
type Snapshot struct {
	Game                GameView     `json:"game"`
	Players             []PlayerView `json:"players"`
	CurrentRound        *RoundView   `json:"current_round"`
	State               Phase        `json:"state"`
	CurrentPlayerID     string       `json:"current_player_id,omitempty"`
	TimeRemainingMS     int64        `json:"time_remaining_ms"`
	YouAreCurrentPlayer bool         `json:"you_are_current_player"`
}

func viewGame(g Game) GameView {
	return GameView{
		ID:         g.ID,
		Code:       g.Code,
		Name:       g.Name,
		AdminID:    g.AdminID,
		Status:     g.Status,
		CreatedAt:  g.CreatedAt,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
}

func viewPlayer(p Player) PlayerView {
	return PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		AvatarID:  p.AvatarID,
		Score:     p.Score,
		HasPlayed: p.HasPlayed,
		Status:    p.Status,
	}
}

func viewPlayers(players []*Player) []PlayerView {
	views := make([]PlayerView, 0, len(players))
	for _, player := range players {
		views = append(views, viewPlayer(*player))
	}
	return views
}

// Observer is the viewer id of a shared display such as the host screen.
// Observers see the word during play; anonymous viewers never do.
const Observer = "observer"

// wordVisible reports whether viewerID may see the actor's word. An empty
// viewer is anonymous.
func wordVisible(phase Phase, actorID, viewerID string) bool {
	return phase == PhasePlaying && viewerID != "" && viewerID != actorID
}

// NewSnapshot renders state for viewerID.
func NewSnapshot(state *State, viewerID string, now time.Time) Snapshot {
	snap := Snapshot{
		Game:            viewGame(state.Game),
		Players:         viewPlayers(state.Players),
		State:           state.Phase,
		CurrentPlayerID: state.ActorID,
		TimeRemainingMS: state.Remaining(now).Milliseconds(),
	}
	snap.YouAreCurrentPlayer = viewerID != "" && viewerID == state.ActorID
	if round := state.Round; round != nil {
		view := &RoundView{
			ID:       round.ID,
			Number:   round.Number,
			PlayerID: round.PlayerID,
			Category: round.Category,
			Status:   round.Status,
		}
		if round.Status == RoundInProgress && wordVisible(state.Phase, state.ActorID, viewerID) {
			view.Word = round.Word
		}
		snap.CurrentRound = view
	}
	return snap
}
