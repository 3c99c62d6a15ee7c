package models

import (
	"time"
)

// Draw lifecycle. Transitions only move forward:
// SCHEDULED → CLOSED → DRAWN → PUBLISHED
const (
	DrawStatusScheduled = "SCHEDULED"
	DrawStatusClosed    = "CLOSED"
	DrawStatusDrawn     = "DRAWN"
	DrawStatusPublished = "PUBLISHED"
)

// Draw is one scheduled occurrence of a game's outcome event. Rows are
// append-only history: they are created by the generator and mutated by the
// closer/executor/publisher, never deleted.
type Draw struct {
	ID         string `json:"id" gorm:"primaryKey"`
	GameID     string `json:"game_id" gorm:"index;not null"`
	TemplateID string `json:"template_id"`

	ScheduledAt time.Time `json:"scheduled_at" gorm:"index;not null"`
	Status      string    `json:"status" gorm:"index;default:'SCHEDULED'"`

	// PreselectedItemID may be set by an operator while status is SCHEDULED or
	// CLOSED; the closer fills it only when empty. WinnerItemID is set once,
	// at execution.
	PreselectedItemID *string `json:"preselected_item_id"`
	WinnerItemID      *string `json:"winner_item_id"`

	ClosedAt    *time.Time `json:"closed_at"`
	DrawnAt     *time.Time `json:"drawn_at"`
	PublishedAt *time.Time `json:"published_at"`

	ImageURL   *string `json:"image_url"`
	ImageError *string `json:"image_error"`

	Game            *Game     `json:"game,omitempty" gorm:"foreignKey:GameID"`
	PreselectedItem *GameItem `json:"preselected_item,omitempty" gorm:"foreignKey:PreselectedItemID"`
	WinnerItem      *GameItem `json:"winner_item,omitempty" gorm:"foreignKey:WinnerItemID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DrawTemplate describes the per-weekday schedule of a game.
// DaysOfWeek uses 1-7 (Mon-Sun), DrawTimes are local "HH:MM" strings.
type DrawTemplate struct {
	ID          string `json:"id" gorm:"primaryKey"`
	GameID      string `json:"game_id" gorm:"index;not null"`
	Name        string `json:"name"`
	Description string `json:"description"`

	DaysOfWeek []int    `json:"days_of_week" gorm:"serializer:json"`
	DrawTimes  []string `json:"draw_times" gorm:"serializer:json"`
	IsActive   bool     `json:"is_active" gorm:"default:true"`

	Game *Game `json:"game,omitempty" gorm:"foreignKey:GameID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DrawPause suspends draw generation for a game over a date range.
// Consulted by the generator, never mutated by it.
type DrawPause struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	GameID    string    `json:"game_id" gorm:"index;not null"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Reason    string    `json:"reason"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DrawStats is the persisted financial summary of a single draw, recomputed
// (upserted) after execution.
type DrawStats struct {
	ID     string `json:"id" gorm:"primaryKey"`
	DrawID string `json:"draw_id" gorm:"uniqueIndex;not null"`

	TotalSales  float64 `json:"total_sales"`
	WinnerSales float64 `json:"winner_sales"`
	TotalPayout float64 `json:"total_payout"`
	Profit      float64 `json:"profit"`
	TicketCount int     `json:"ticket_count"`
	WinnerCount int     `json:"winner_count"`

	CalculatedAt time.Time `json:"calculated_at"`
}
