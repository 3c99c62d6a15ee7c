package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	UserRolePlayer = "player"
	UserRoleAdmin  = "admin"
)

type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Role     string `json:"role" gorm:"default:'player'"`

	// Balance mutations (wager debit, prize credit) happen only inside
	// guarded transactions; see services/tickets.go and services/prizes.go.
	Balance float64 `json:"balance" gorm:"default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// TelegramChatID links an admin account for operational notifications.
	TelegramChatID *int64 `json:"telegram_chat_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
