package models

import (
	"time"
)

const (
	TripleBetStatusActive  = "ACTIVE"
	TripleBetStatusWon     = "WON"
	TripleBetStatusExpired = "EXPIRED"
)

// TripleBet (tripleta) is a wager on three distinct game items maturing across
// a fixed count of consecutive draws of one game. Settlement is irreversible:
// once WON or EXPIRED the row is never evaluated again.
type TripleBet struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index;not null"`
	GameID string `json:"game_id" gorm:"index;not null"`

	Item1ID string `json:"item1_id" gorm:"not null"`
	Item2ID string `json:"item2_id" gorm:"not null"`
	Item3ID string `json:"item3_id" gorm:"not null"`

	Amount     float64 `json:"amount" gorm:"not null"`
	Multiplier float64 `json:"multiplier" gorm:"not null"`
	DrawCount  int     `json:"draw_count" gorm:"not null"`

	StartDrawID string    `json:"start_draw_id" gorm:"index;not null"`
	EndDrawID   string    `json:"end_draw_id" gorm:"not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"index;not null"`

	Status       string  `json:"status" gorm:"index;default:'ACTIVE'"`
	WinnerDrawID *string `json:"winner_draw_id"`
	Prize        float64 `json:"prize" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
