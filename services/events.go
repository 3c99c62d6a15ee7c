package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lottery-publish-system/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Broadcast channel consumed by the realtime frontends.
const EventBroadcastChannel = "draw_events_broadcast"

// EventService fans application events out over Redis pub/sub and writes
// audit rows. Both paths are fire-and-forget: a dead Redis or a failed audit
// insert is logged and never blocks the caller's state transition.
type EventService struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewEventService(db *gorm.DB, rdb *redis.Client) *EventService {
	return &EventService{DB: db, RDB: rdb}
}

type eventEnvelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *EventService) Emit(event string, payload any) {
	if s.RDB == nil {
		return
	}

	body, err := json.Marshal(eventEnvelope{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("⚠️ [EVENTS] Failed to marshal %s: %v", event, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.RDB.Publish(ctx, EventBroadcastChannel, body).Err(); err != nil {
			log.Printf("⚠️ [EVENTS] Failed to publish %s: %v", event, err)
		}
	}()
}

func (s *EventService) Audit(action, entity, entityID string, changes map[string]any) {
	entry := models.AuditLog{
		ID:       uuid.NewString(),
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Changes:  changes,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("⚠️ [AUDIT] Failed to record %s/%s: %v", action, entityID, err)
	}
}
