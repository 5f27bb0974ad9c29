package game

import (
	"errors"
	"strings"
	"time"
)

type GameStatus string

const (
	GameWaiting    GameStatus = "waiting"
	GameInProgress GameStatus = "in_progress"
	GameFinished   GameStatus = "finished"
)

type PlayerStatus string

const (
	PlayerWaiting   PlayerStatus = "waiting"
	PlayerPreparing PlayerStatus = "preparing"
	PlayerPlaying   PlayerStatus = "playing"
)

type RoundStatus string

const (
	RoundInProgress RoundStatus = "in_progress"
	RoundComplete   RoundStatus = "complete"
)

// Phase is the session state machine position of a live game.
type Phase string

const (
	PhaseWaiting        Phase = "WAITING"
	PhaseWheelSpinning  Phase = "WHEEL_SPINNING"
	PhasePlayerSelected Phase = "PLAYER_SELECTED"
	PhasePreparing      Phase = "PREPARING"
	PhasePlaying        Phase = "PLAYING"
	PhaseRoundComplete  Phase = "ROUND_COMPLETE"
	PhaseGameFinished   Phase = "GAME_FINISHED"
)

type Action string

const (
	ActionCorrect Action = "correct"
	ActionWrong   Action = "wrong"
)

var errInvalidAction = errors.New("action must be correct or wrong")

func ParseAction(raw string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionCorrect:
		return ActionCorrect, nil
	case ActionWrong:
		return ActionWrong, nil
	default:
		return "", errInvalidAction
	}
}

type Game struct {
	ID         string
	Code       string
	Name       string
	AdminID    string
	Status     GameStatus
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

type Player struct {
	ID        string
	GameID    string
	Name      string
	AvatarID  string
	Score     int
	HasPlayed bool
	Status    PlayerStatus
	JoinedAt  time.Time
}

type Round struct {
	ID         string
	GameID     string
	Number     int
	PlayerID   string
	Word       string
	Category   string
	Status     RoundStatus
	DeadlineAt *time.Time
	CreatedAt  time.Time
}

// EventRecord is one entry of the persisted per-game event log.
type EventRecord struct {
	ID        uint
	GameID    string
	RoundID   string
	PlayerID  string
	Type      string
	Payload   EventPayload
	CreatedAt time.Time
}

type EventPayload struct {
	GameCode   string `json:"game_code,omitempty"`
	PlayerName string `json:"player,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	Round      int    `json:"round_number,omitempty"`
	Category   string `json:"category,omitempty"`
	Action     string `json:"action,omitempty"`
	Delta      int    `json:"score_change,omitempty"`
	Score      int    `json:"score,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Phase      string `json:"phase,omitempty"`
}
