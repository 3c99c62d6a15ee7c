package models

import (
	"time"
)

const (
	TicketStatusActive = "ACTIVE"
	TicketStatusWon    = "WON"
	TicketStatusLost   = "LOST"
)

const (
	TicketSourceWeb         = "WEB"
	TicketSourceExternalAPI = "EXTERNAL_API"
)

// Ticket is a single-draw wager. Its aggregate status is derived from its
// details: WON if any detail won, ACTIVE while any detail is still active,
// LOST otherwise.
type Ticket struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index"`
	DrawID string `json:"draw_id" gorm:"index;not null"`

	TotalAmount float64 `json:"total_amount" gorm:"default:0"`
	TotalPrize  float64 `json:"total_prize" gorm:"default:0"`
	Status      string  `json:"status" gorm:"index;default:'ACTIVE'"`

	Source     string  `json:"source" gorm:"default:'WEB'"`
	ExternalID *string `json:"external_id" gorm:"index"`

	Details []TicketDetail `json:"details,omitempty" gorm:"foreignKey:TicketID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketDetail allocates part of a ticket's amount to one game item.
// Multiplier is copied from the item at bet time so later item edits cannot
// change an accepted wager.
type TicketDetail struct {
	ID         string `json:"id" gorm:"primaryKey"`
	TicketID   string `json:"ticket_id" gorm:"index;not null"`
	GameItemID string `json:"game_item_id" gorm:"index;not null"`

	Amount     float64 `json:"amount" gorm:"not null"`
	Multiplier float64 `json:"multiplier" gorm:"not null"`
	Prize      float64 `json:"prize" gorm:"default:0"`
	Status     string  `json:"status" gorm:"index;default:'ACTIVE'"`

	GameItem *GameItem `json:"game_item,omitempty" gorm:"foreignKey:GameItemID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
