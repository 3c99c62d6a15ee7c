package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GameTypeAnimalitos = "ANIMALITOS"
	GameTypeTriple     = "TRIPLE"
)

type Game struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`
	Type string `json:"type" gorm:"default:'ANIMALITOS'"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// 🎲 Tripleta (multi-draw bet) configuration
	TripletaEnabled    bool    `json:"tripleta_enabled" gorm:"default:false"`
	TripletaMultiplier float64 `json:"tripleta_multiplier" gorm:"default:0"`
	TripletaDrawCount  int     `json:"tripleta_draw_count" gorm:"default:3"`

	Items []GameItem `json:"items,omitempty" gorm:"foreignKey:GameID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// GameItem is one selectable outcome (number) of a game. Items are not edited
// while a draw that references them is in flight; only IsActive toggles.
type GameItem struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	GameID     string  `json:"game_id" gorm:"index;not null"`
	Number     string  `json:"number" gorm:"not null"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier" gorm:"default:30"`
	IsActive   bool    `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
