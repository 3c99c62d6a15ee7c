package models

import (
	"time"
)

const (
	ChannelTypeWhatsApp  = "WHATSAPP"
	ChannelTypeTelegram  = "TELEGRAM"
	ChannelTypeFacebook  = "FACEBOOK"
	ChannelTypeInstagram = "INSTAGRAM"
)

// IsValidChannelType reports whether t is one of the supported channel types.
func IsValidChannelType(t string) bool {
	switch t {
	case ChannelTypeWhatsApp, ChannelTypeTelegram, ChannelTypeFacebook, ChannelTypeInstagram:
		return true
	}
	return false
}

const (
	InstanceStatusConnected    = "CONNECTED"
	InstanceStatusDisconnected = "DISCONNECTED"
	InstanceStatusPaused       = "PAUSED"
)

const (
	PublicationStatusPending = "PENDING"
	PublicationStatusSent    = "SENT"
	PublicationStatusFailed  = "FAILED"
	PublicationStatusSkipped = "SKIPPED"
)

// ChannelInstance is one connected messaging account (a bot, page or session)
// usable by game channels of its type. A PAUSED instance makes every send
// through it a skip, not a failure.
type ChannelInstance struct {
	ID          string `json:"id" gorm:"primaryKey"`
	InstanceID  string `json:"instance_id" gorm:"uniqueIndex;not null"`
	ChannelType string `json:"channel_type" gorm:"index;not null"`
	Name        string `json:"name"`

	// AccessToken is the provider credential (bot token, page token, long-lived
	// user token). Storage format is up to the deployment.
	AccessToken string `json:"-"`
	AccountID   string `json:"account_id"`

	Status      string     `json:"status" gorm:"default:'DISCONNECTED'"`
	LastError   *string    `json:"last_error"`
	ConnectedAt *time.Time `json:"connected_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameChannel binds a game to one publication target on one instance.
type GameChannel struct {
	ID          string `json:"id" gorm:"primaryKey"`
	GameID      string `json:"game_id" gorm:"index;not null"`
	Name        string `json:"name"`
	ChannelType string `json:"channel_type" gorm:"not null"`
	InstanceID  string `json:"instance_id" gorm:"not null"`

	// ChatID for Telegram, Recipients (JIDs / group ids) for WhatsApp.
	ChatID     string   `json:"chat_id"`
	Recipients []string `json:"recipients" gorm:"serializer:json"`

	MessageTemplate string `json:"message_template"`
	IsActive        bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DrawPublication records the outcome of publishing one draw to one channel
// type. One row per (draw, channel); retries update the row in place. Only
// FAILED rows are retried automatically; a SKIPPED row (paused instance) is
// resent through the manual per-channel retry endpoint.
type DrawPublication struct {
	ID      string `json:"id" gorm:"primaryKey"`
	DrawID  string `json:"draw_id" gorm:"index:idx_draw_channel,unique;not null"`
	Channel string `json:"channel" gorm:"index:idx_draw_channel,unique;not null"`

	Status     string  `json:"status" gorm:"index;default:'PENDING'"`
	Retries    int     `json:"retries" gorm:"default:0"`
	ExternalID *string `json:"external_id"`
	Error      *string `json:"error"`

	SentAt *time.Time `json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
