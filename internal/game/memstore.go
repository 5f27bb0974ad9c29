package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Gateway kept in process memory. It backs the server when
// no database is configured and keeps the same uniqueness rules as the
// relational schema.
type MemoryStore struct {
	mu      sync.Mutex
	games   map[string]Game
	players map[string]Player
	joined  []string
	rounds  map[string]Round
	events  []EventRecord
	nextEv  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]Game),
		players: make(map[string]Player),
		rounds:  make(map[string]Round),
	}
}

func (m *MemoryStore) CreateGame(_ context.Context, game *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.games {
		if existing.Code == game.Code {
			return ErrDuplicateGameCode
		}
	}
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}
	m.games[game.ID] = *game
	return nil
}

func (m *MemoryStore) GameByCode(_ context.Context, code string) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, game := range m.games {
		if game.Code == code {
			return game, nil
		}
	}
	return Game{}, ErrGameNotFound
}

func (m *MemoryStore) UpdateGame(_ context.Context, game Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; !ok {
		return ErrGameNotFound
	}
	m.games[game.ID] = game
	return nil
}

func (m *MemoryStore) DeleteGame(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, gameID)
	joined := m.joined[:0]
	for _, id := range m.joined {
		if m.players[id].GameID == gameID {
			delete(m.players, id)
			continue
		}
		joined = append(joined, id)
	}
	m.joined = joined
	for id, round := range m.rounds {
		if round.GameID == gameID {
			delete(m.rounds, id)
		}
	}
	kept := m.events[:0]
	for _, event := range m.events {
		if event.GameID != gameID {
			kept = append(kept, event)
		}
	}
	m.events = kept
	return nil
}

func (m *MemoryStore) CreatePlayer(_ context.Context, player *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[player.GameID]; !ok {
		return ErrGameNotFound
	}
	for _, existing := range m.players {
		if existing.GameID == player.GameID && existing.Name == player.Name {
			return ErrDuplicatePlayerName
		}
	}
	if player.ID == "" {
		player.ID = uuid.NewString()
	}
	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now().UTC()
	}
	m.players[player.ID] = *player
	m.joined = append(m.joined, player.ID)
	return nil
}

func (m *MemoryStore) ListPlayers(_ context.Context, gameID string) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]Player, 0)
	for _, id := range m.joined {
		if player := m.players[id]; player.GameID == gameID {
			list = append(list, player)
		}
	}
	return list, nil
}

func (m *MemoryStore) UpdatePlayer(_ context.Context, player Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[player.ID]; !ok {
		return ErrPlayerNotFound
	}
	m.players[player.ID] = player
	return nil
}

func (m *MemoryStore) CreateRound(_ context.Context, round *Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[round.GameID]; !ok {
		return ErrGameNotFound
	}
	for _, existing := range m.rounds {
		if existing.GameID == round.GameID && existing.Number == round.Number {
			return reject(ErrDuplicateResource, "Round already exists")
		}
	}
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now().UTC()
	}
	m.rounds[round.ID] = *round
	return nil
}

func (m *MemoryStore) LatestRound(_ context.Context, gameID string) (Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest Round
	found := false
	for _, round := range m.rounds {
		if round.GameID != gameID {
			continue
		}
		if !found || round.Number > latest.Number {
			latest = round
			found = true
		}
	}
	if !found {
		return Round{}, ErrRoundNotFound
	}
	return latest, nil
}

func (m *MemoryStore) UpdateRound(_ context.Context, round Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[round.ID]; !ok {
		return ErrRoundNotFound
	}
	m.rounds[round.ID] = round
	return nil
}

func (m *MemoryStore) UsedCategories(_ context.Context, gameID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := make([]string, 0)
	for _, round := range m.rounds {
		if round.GameID == gameID && round.Category != "" {
			used = append(used, round.Category)
		}
	}
	return used, nil
}

func (m *MemoryStore) RecordEvent(_ context.Context, event EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEv++
	event.ID = m.nextEv
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryStore) ListEvents(_ context.Context, gameID string) ([]EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]EventRecord, 0)
	for _, event := range m.events {
		if event.GameID == gameID {
			list = append(list, event)
		}
	}
	return list, nil
}
