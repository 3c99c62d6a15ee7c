package channels

import (
	"context"
	"errors"

	"lottery-publish-system/models"
)

var (
	// ErrInstancePaused marks a send that was skipped because the backing
	// instance is administratively paused. Callers record it as skipped,
	// never as failed.
	ErrInstancePaused = errors.New("channel instance is paused")

	ErrUnsupportedChannel = errors.New("unsupported channel type")
)

// SendResult is what a provider reports back for a successful delivery.
type SendResult struct {
	ExternalID string `json:"external_id"`
	SentCount  int    `json:"sent_count"`
}

// Provider is one messaging backend (WhatsApp, Telegram, ...). Each call may
// fail independently; providers return structured errors and never panic.
// There is no cancellation mid-send: once in flight a send runs to completion
// or provider-side timeout.
type Provider interface {
	Type() string
	Send(ctx context.Context, instance models.ChannelInstance, channel models.GameChannel, text, imageURL string) (*SendResult, error)
}
