package db

import "time"

type Round struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	GameID           string `gorm:"type:uuid;index;not null;uniqueIndex:idx_charades_rounds_game_number"`
	RoundNumber      int    `gorm:"not null;uniqueIndex:idx_charades_rounds_game_number"`
	SelectedPlayerID string `gorm:"type:uuid;not null"`
	Word             string `gorm:"size:120;not null"`
	Category         string `gorm:"size:64;not null"`
	Status           string `gorm:"size:32;not null"`
	// DeadlineAt lets a restarted process resume a running play timer.
	DeadlineAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (Round) TableName() string { return "charades_rounds" }
