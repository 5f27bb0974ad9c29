package db

import "time"

// Player rows are listed in created_at order, which is join order.
type Player struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	GameID     string    `gorm:"type:uuid;index;not null;uniqueIndex:idx_charades_players_game_name"`
	PlayerName string    `gorm:"size:64;not null;uniqueIndex:idx_charades_players_game_name"`
	AvatarID   string    `gorm:"size:64;not null;default:''"`
	Score      int       `gorm:"not null;default:0"`
	HasPlayed  bool      `gorm:"not null;default:false"`
	Status     string    `gorm:"size:32;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Player) TableName() string { return "charades_players" }
