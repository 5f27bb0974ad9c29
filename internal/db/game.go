package db

import "time"

type Game struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	GameCode   string    `gorm:"size:6;uniqueIndex;not null"`
	Name       string    `gorm:"size:120;not null"`
	AdminID    string    `gorm:"size:64;not null"`
	Status     string    `gorm:"size:32;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	StartedAt  *time.Time
	FinishedAt *time.Time
	Players    []Player
	Rounds     []Round
	Events     []Event
}

func (Game) TableName() string { return "charades_games" }
