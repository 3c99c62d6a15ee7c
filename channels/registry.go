package channels

import (
	"context"
	"fmt"

	"lottery-publish-system/models"

	"gorm.io/gorm"
)

// Registry maps channel types to providers and instance ids to their stored
// credentials/state. It is built at startup and injected into the publication
// engine; nothing here is ambient or global.
type Registry struct {
	db        *gorm.DB
	providers map[string]Provider
	throttled map[string]*ThrottledSender
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		db:        db,
		providers: make(map[string]Provider),
		throttled: make(map[string]*ThrottledSender),
	}
}

// Register adds a provider. A non-nil throttle routes every send of this
// channel type through the serialized worker.
func (r *Registry) Register(p Provider, throttle *ThrottledSender) {
	r.providers[p.Type()] = p
	if throttle != nil {
		r.throttled[p.Type()] = throttle
	}
}

// Instance loads the backing instance row for a game channel.
func (r *Registry) Instance(instanceID string) (*models.ChannelInstance, error) {
	var instance models.ChannelInstance
	if err := r.db.Where("instance_id = ?", instanceID).First(&instance).Error; err != nil {
		return nil, fmt.Errorf("instance %s not found: %w", instanceID, err)
	}
	return &instance, nil
}

// Send delivers one rendered message through the channel's provider.
// A paused instance returns ErrInstancePaused; throttled channel types are
// serialized through their worker, everything else runs inline (callers
// dispatch concurrently).
func (r *Registry) Send(ctx context.Context, channel models.GameChannel, text, imageURL string) (*SendResult, error) {
	provider, ok := r.providers[channel.ChannelType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel.ChannelType)
	}

	instance, err := r.Instance(channel.InstanceID)
	if err != nil {
		return nil, err
	}

	switch instance.Status {
	case models.InstanceStatusPaused:
		return nil, ErrInstancePaused
	case models.InstanceStatusConnected:
		// proceed
	default:
		return nil, fmt.Errorf("instance %s is not connected (status %s)", instance.InstanceID, instance.Status)
	}

	throttle, ok := r.throttled[channel.ChannelType]
	if !ok {
		return provider.Send(ctx, *instance, channel, text, imageURL)
	}

	var result *SendResult
	var sendErr error
	if err := throttle.Do(ctx, func() {
		result, sendErr = provider.Send(ctx, *instance, channel, text, imageURL)
	}); err != nil {
		return nil, err
	}
	return result, sendErr
}
