package game

import "time"

type EventType string

const (
	EventConnectionEstablished EventType = "CONNECTION_ESTABLISHED"
	EventGameStateUpdate       EventType = "GAME_STATE_UPDATE"
	EventWheelSpinning         EventType = "WHEEL_SPINNING"
	EventPlayerSelected        EventType = "PLAYER_SELECTED"
	EventPlayerPreparing       EventType = "PLAYER_PREPARING"
	EventGamePlaying           EventType = "GAME_PLAYING"
	EventTimerTick             EventType = "TIMER_TICK"
	EventActionRecorded        EventType = "PLAYER_ACTION_RECORDED"
	EventScoreUpdate           EventType = "SCORE_UPDATE"
	EventRoundComplete         EventType = "ROUND_COMPLETE"
	EventGameFinished          EventType = "GAME_FINISHED"
	EventPong                  EventType = "PONG"
	EventError                 EventType = "ERROR"
)

// Event is a server push. The set of implementations is closed; each one
// renders its payload for a single recipient so secrets are filtered before
// they reach the transport.
type Event interface {
	Type() EventType
	PayloadFor(viewerID string) any
	event()
}

// Envelope is the wire frame written to clients.
type Envelope struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

func Render(ev Event, viewerID string) Envelope {
	return Envelope{Type: ev.Type(), Payload: ev.PayloadFor(viewerID)}
}

type ConnectionEstablished struct {
	Code     string `json:"game_code"`
	PlayerID string `json:"player_id,omitempty"`
}

type GameStateUpdate struct {
	state *State
	at    time.Time
}

func NewGameStateUpdate(state *State, now time.Time) GameStateUpdate {
	return GameStateUpdate{state: state.Clone(), at: now}
}

type WheelSpinning struct {
	RoundNumber int `json:"round_number"`
}

type PlayerSelected struct {
	RoundID     string `json:"round_id"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	AvatarID    string `json:"avatar_id"`
	Category    string `json:"category"`
}

type PlayerPreparingEvent struct {
	PlayerID   string
	PlayerName string
	Category   string
}

type GamePlaying struct {
	PlayerID   string
	PlayerName string
	Category   string
	Word       string
	Duration   time.Duration
	Deadline   time.Time
}

type TimerTick struct {
	RemainingMS int64 `json:"time_remaining_ms"`
}

type ActionRecorded struct {
	PlayerID string `json:"player_id"`
	Action   Action `json:"action"`
	Delta    int    `json:"score_change"`
	Score    int    `json:"new_score"`
}

type ScoreUpdate struct {
	Players []PlayerView `json:"players"`
}

type RoundCompleteEvent struct {
	RoundID     string `json:"round_id"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Word        string `json:"word"`
	Score       int    `json:"score"`
	Reason      string `json:"reason"`
	AllPlayed   bool   `json:"all_played"`
}

type GameFinishedEvent struct {
	Results
}

type Pong struct{}

type ErrorEvent struct {
	Message string `json:"message"`
}

func (ConnectionEstablished) Type() EventType { return EventConnectionEstablished }
func (GameStateUpdate) Type() EventType       { return EventGameStateUpdate }
func (WheelSpinning) Type() EventType         { return EventWheelSpinning }
func (PlayerSelected) Type() EventType        { return EventPlayerSelected }
func (PlayerPreparingEvent) Type() EventType  { return EventPlayerPreparing }
func (GamePlaying) Type() EventType           { return EventGamePlaying }
func (TimerTick) Type() EventType             { return EventTimerTick }
func (ActionRecorded) Type() EventType        { return EventActionRecorded }
func (ScoreUpdate) Type() EventType           { return EventScoreUpdate }
func (RoundCompleteEvent) Type() EventType    { return EventRoundComplete }
func (GameFinishedEvent) Type() EventType     { return EventGameFinished }
func (Pong) Type() EventType                  { return EventPong }
func (ErrorEvent) Type() EventType            { return EventError }

func (e ConnectionEstablished) PayloadFor(string) any { return e }
func (e WheelSpinning) PayloadFor(string) any         { return e }
func (e PlayerSelected) PayloadFor(string) any        { return e }
func (e TimerTick) PayloadFor(string) any             { return e }
func (e ActionRecorded) PayloadFor(string) any        { return e }
func (e ScoreUpdate) PayloadFor(string) any           { return e }
func (e RoundCompleteEvent) PayloadFor(string) any    { return e }
func (e GameFinishedEvent) PayloadFor(string) any     { return e.Results }
func (Pong) PayloadFor(string) any                    { return nil }
func (e ErrorEvent) PayloadFor(string) any            { return e }

func (e GameStateUpdate) PayloadFor(viewerID string) any {
	return NewSnapshot(e.state, viewerID, e.at)
}

func (e PlayerPreparingEvent) PayloadFor(viewerID string) any {
	isYou := viewerID != "" && viewerID == e.PlayerID
	return map[string]any{
		"player_id":            e.PlayerID,
		"player_name":          e.PlayerName,
		"category":             e.Category,
		"is_you":               isYou,
		"preparation_required": isYou,
	}
}

// PayloadFor withholds the word from the actor.
func (e GamePlaying) PayloadFor(viewerID string) any {
	payload := map[string]any{
		"player_id":      e.PlayerID,
		"player_name":    e.PlayerName,
		"category":       e.Category,
		"timer_duration": int(e.Duration / time.Second),
		"deadline":       e.Deadline,
		"is_you":         viewerID != "" && viewerID == e.PlayerID,
	}
	if wordVisible(PhasePlaying, e.PlayerID, viewerID) {
		payload["word"] = e.Word
	} else {
		payload["word"] = nil
	}
	return payload
}

func (ConnectionEstablished) event() {}
func (GameStateUpdate) event()       {}
func (WheelSpinning) event()         {}
func (PlayerSelected) event()        {}
func (PlayerPreparingEvent) event()  {}
func (GamePlaying) event()           {}
func (TimerTick) event()             {}
func (ActionRecorded) event()        {}
func (ScoreUpdate) event()           {}
func (RoundCompleteEvent) event()    {}
func (GameFinishedEvent) event()     {}
func (Pong) event()                  {}
func (ErrorEvent) event()            {}
