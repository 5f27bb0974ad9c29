package game

import "context"

// Gateway is the persistence boundary for games, players and rounds.
// Implementations report connectivity problems as ErrStorageUnavailable and
// never retry on their own.
//
// Create* methods assign an ID when the record has none.
type Gateway interface {
	CreateGame(ctx context.Context, game *Game) error
	GameByCode(ctx context.Context, code string) (Game, error)
	UpdateGame(ctx context.Context, game Game) error
	DeleteGame(ctx context.Context, gameID string) error

	CreatePlayer(ctx context.Context, player *Player) error
	ListPlayers(ctx context.Context, gameID string) ([]Player, error)
	UpdatePlayer(ctx context.Context, player Player) error

	CreateRound(ctx context.Context, round *Round) error
	LatestRound(ctx context.Context, gameID string) (Round, error)
	UpdateRound(ctx context.Context, round Round) error
	UsedCategories(ctx context.Context, gameID string) ([]string, error)

	RecordEvent(ctx context.Context, event EventRecord) error
	ListEvents(ctx context.Context, gameID string) ([]EventRecord, error)
}

// Broadcaster fans events out to every client connected to a game.
// Broadcast returns once a send has been attempted for every client.
type Broadcaster interface {
	Broadcast(ctx context.Context, code string, event Event)
	Disconnect(code string)
}
