package models

import (
	"time"
)

const (
	AuditDrawsGenerated = "DRAWS_GENERATED"
	AuditDrawClosed     = "DRAW_CLOSED"
	AuditDrawExecuted   = "DRAW_EXECUTED"
	AuditDrawPublished  = "DRAW_PUBLISHED"
	AuditPreselectSet   = "PRESELECT_OVERRIDDEN"
)

type AuditLog struct {
	ID       string         `json:"id" gorm:"primaryKey"`
	Action   string         `json:"action" gorm:"index;not null"`
	Entity   string         `json:"entity" gorm:"not null"`
	EntityID string         `json:"entity_id" gorm:"index"`
	Changes  map[string]any `json:"changes" gorm:"serializer:json"`

	CreatedAt time.Time `json:"created_at"`
}
