package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kira8ke/GloHub/internal/game"
)

var (
	_ game.Gateway    = (*Repository)(nil)
	_ game.WordSource = (*Repository)(nil)
)

// Repository is the postgres Gateway. It is also a game.WordSource backed by
// word_library, using the built-in pools while that table is empty.
type Repository struct {
	conn     *gorm.DB
	fallback game.StaticWords
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{conn: conn, fallback: game.DefaultWords()}
}

func (r *Repository) CreateGame(ctx context.Context, g *game.Game) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	record := Game{
		ID:         g.ID,
		GameCode:   g.Code,
		Name:       g.Name,
		AdminID:    g.AdminID,
		Status:     string(g.Status),
		CreatedAt:  g.CreatedAt,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
	if err := r.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicateGameCode
		}
		return game.Unavailable("create game", err)
	}
	g.CreatedAt = record.CreatedAt
	return nil
}

func (r *Repository) GameByCode(ctx context.Context, code string) (game.Game, error) {
	var record Game
	err := r.conn.WithContext(ctx).Where("game_code = ?", code).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.Game{}, game.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, game.Unavailable("find game", err)
	}
	return toGame(record), nil
}

func (r *Repository) UpdateGame(ctx context.Context, g game.Game) error {
	result := r.conn.WithContext(ctx).Model(&Game{}).Where("id = ?", g.ID).Updates(map[string]any{
		"name":        g.Name,
		"status":      string(g.Status),
		"started_at":  g.StartedAt,
		"finished_at": g.FinishedAt,
	})
	if result.Error != nil {
		return game.Unavailable("update game", result.Error)
	}
	if result.RowsAffected == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

// DeleteGame removes the game and everything that references it.
func (r *Repository) DeleteGame(ctx context.Context, gameID string) error {
	err := r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", gameID).Delete(&Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&Round{}).Error; err != nil {
			return err
		}
		if err := tx.Where("game_id = ?", gameID).Delete(&Player{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", gameID).Delete(&Game{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return game.ErrGameNotFound
		}
		return nil
	})
	return game.Unavailable("delete game", err)
}

func (r *Repository) CreatePlayer(ctx context.Context, p *game.Player) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	record := Player{
		ID:         p.ID,
		GameID:     p.GameID,
		PlayerName: p.Name,
		AvatarID:   p.AvatarID,
		Score:      p.Score,
		HasPlayed:  p.HasPlayed,
		Status:     string(p.Status),
		CreatedAt:  p.JoinedAt,
	}
	if err := r.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrDuplicatePlayerName
		}
		return game.Unavailable("create player", err)
	}
	p.JoinedAt = record.CreatedAt
	return nil
}

func (r *Repository) ListPlayers(ctx context.Context, gameID string) ([]game.Player, error) {
	var records []Player
	err := r.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("created_at asc, id asc").Find(&records).Error
	if err != nil {
		return nil, game.Unavailable("list players", err)
	}
	players := make([]game.Player, 0, len(records))
	for _, record := range records {
		players = append(players, toPlayer(record))
	}
	return players, nil
}

func (r *Repository) UpdatePlayer(ctx context.Context, p game.Player) error {
	result := r.conn.WithContext(ctx).Model(&Player{}).Where("id = ?", p.ID).Updates(map[string]any{
		"score":      p.Score,
		"has_played": p.HasPlayed,
		"status":     string(p.Status),
		"avatar_id":  p.AvatarID,
	})
	if result.Error != nil {
		return game.Unavailable("update player", result.Error)
	}
	if result.RowsAffected == 0 {
		return game.ErrPlayerNotFound
	}
	return nil
}

func (r *Repository) CreateRound(ctx context.Context, round *game.Round) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	record := Round{
		ID:               round.ID,
		GameID:           round.GameID,
		RoundNumber:      round.Number,
		SelectedPlayerID: round.PlayerID,
		Word:             round.Word,
		Category:         round.Category,
		Status:           string(round.Status),
		DeadlineAt:       round.DeadlineAt,
		CreatedAt:        round.CreatedAt,
	}
	if err := r.conn.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("round %d: %w", round.Number, game.ErrDuplicateResource)
		}
		return game.Unavailable("create round", err)
	}
	round.CreatedAt = record.CreatedAt
	return nil
}

func (r *Repository) LatestRound(ctx context.Context, gameID string) (game.Round, error) {
	var record Round
	err := r.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("round_number desc").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.Round{}, game.ErrRoundNotFound
	}
	if err != nil {
		return game.Round{}, game.Unavailable("latest round", err)
	}
	return toRound(record), nil
}

func (r *Repository) UpdateRound(ctx context.Context, round game.Round) error {
	result := r.conn.WithContext(ctx).Model(&Round{}).Where("id = ?", round.ID).Updates(map[string]any{
		"status":      string(round.Status),
		"deadline_at": round.DeadlineAt,
	})
	if result.Error != nil {
		return game.Unavailable("update round", result.Error)
	}
	if result.RowsAffected == 0 {
		return game.ErrRoundNotFound
	}
	return nil
}

func (r *Repository) UsedCategories(ctx context.Context, gameID string) ([]string, error) {
	var used []string
	err := r.conn.WithContext(ctx).Model(&Round{}).
		Where("game_id = ?", gameID).
		Distinct("category").
		Pluck("category", &used).Error
	if err != nil {
		return nil, game.Unavailable("used categories", err)
	}
	return used, nil
}

func (r *Repository) RecordEvent(ctx context.Context, event game.EventRecord) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	record := Event{
		GameID:    event.GameID,
		RoundID:   optional(event.RoundID),
		PlayerID:  optional(event.PlayerID),
		Type:      event.Type,
		Payload:   datatypes.JSON(payload),
		CreatedAt: event.CreatedAt,
	}
	if err := r.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return game.Unavailable("record event", err)
	}
	return nil
}

func (r *Repository) ListEvents(ctx context.Context, gameID string) ([]game.EventRecord, error) {
	var records []Event
	if err := r.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("id asc").Find(&records).Error; err != nil {
		return nil, game.Unavailable("list events", err)
	}
	events := make([]game.EventRecord, 0, len(records))
	for _, record := range records {
		event := game.EventRecord{
			ID:        record.ID,
			GameID:    record.GameID,
			Type:      record.Type,
			CreatedAt: record.CreatedAt,
		}
		if record.RoundID != nil {
			event.RoundID = *record.RoundID
		}
		if record.PlayerID != nil {
			event.PlayerID = *record.PlayerID
		}
		if err := json.Unmarshal(record.Payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", record.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *Repository) Words(ctx context.Context) ([]string, error) {
	var words []string
	err := r.conn.WithContext(ctx).Model(&Word{}).Distinct("text").Order("text").Pluck("text", &words).Error
	if err != nil {
		return nil, game.Unavailable("load words", err)
	}
	if len(words) == 0 {
		return r.fallback.WordList, nil
	}
	return words, nil
}

func (r *Repository) WordsIn(ctx context.Context, category string) ([]string, error) {
	var words []string
	err := r.conn.WithContext(ctx).Model(&Word{}).Where("category = ?", category).
		Distinct("text").Order("text").Pluck("text", &words).Error
	if err != nil {
		return nil, game.Unavailable("load words", err)
	}
	if len(words) == 0 {
		return r.Words(ctx)
	}
	return words, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.conn.WithContext(ctx).Model(&Word{}).Distinct("category").Order("category").Pluck("category", &categories).Error
	if err != nil {
		return nil, game.Unavailable("load categories", err)
	}
	if len(categories) == 0 {
		return r.fallback.CategoryList, nil
	}
	return categories, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return Ping(ctx, r.conn)
}

func toGame(record Game) game.Game {
	return game.Game{
		ID:         record.ID,
		Code:       record.GameCode,
		Name:       record.Name,
		AdminID:    record.AdminID,
		Status:     game.GameStatus(record.Status),
		CreatedAt:  record.CreatedAt,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
}

func toPlayer(record Player) game.Player {
	return game.Player{
		ID:        record.ID,
		GameID:    record.GameID,
		Name:      record.PlayerName,
		AvatarID:  record.AvatarID,
		Score:     record.Score,
		HasPlayed: record.HasPlayed,
		Status:    game.PlayerStatus(record.Status),
		JoinedAt:  record.CreatedAt,
	}
}

func toRound(record Round) game.Round {
	return game.Round{
		ID:         record.ID,
		GameID:     record.GameID,
		Number:     record.RoundNumber,
		PlayerID:   record.SelectedPlayerID,
		Word:       record.Word,
		Category:   record.Category,
		Status:     game.RoundStatus(record.Status),
		DeadlineAt: record.DeadlineAt,
		CreatedAt:  record.CreatedAt,
	}
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
