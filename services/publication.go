package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"lottery-publish-system/channels"
	"lottery-publish-system/metrics"
	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChannelSender is the outbound side of the channel registry, narrowed to
// what the publisher needs.
type ChannelSender interface {
	Send(ctx context.Context, channel models.GameChannel, text, imageURL string) (*channels.SendResult, error)
}

// PublicationService fans a drawn result out to the game's configured
// channels. The draw row flips DRAWN → PUBLISHED exactly once before any
// message leaves the process; per-channel delivery state lives in
// draw_publications and is retried independently.
type PublicationService struct {
	DB        *gorm.DB
	Registry  ChannelSender
	Templates *MessageTemplateService
	Events    *EventService

	// ScanLimit caps how many draws one scan tick publishes.
	ScanLimit int
	// SendTimeout bounds one channel delivery attempt.
	SendTimeout time.Duration
}

func NewPublicationService(db *gorm.DB, registry ChannelSender, templates *MessageTemplateService, events *EventService) *PublicationService {
	return &PublicationService{
		DB:          db,
		Registry:    registry,
		Templates:   templates,
		Events:      events,
		ScanLimit:   10,
		SendTimeout: 90 * time.Second,
	}
}

type ChannelResult struct {
	Channel    string `json:"channel"`
	Status     string `json:"status"`
	ExternalID string `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type PublishResult struct {
	DrawID    string          `json:"draw_id"`
	Published bool            `json:"published"`
	Results   []ChannelResult `json:"results"`
}

// PublishPendingDraws scans for DRAWN draws whose image pipeline finished,
// with either an image ready or a recorded render failure. A draw with
// neither is still rendering and waits for a later tick.
func (s *PublicationService) PublishPendingDraws() {
	var draws []models.Draw
	err := s.DB.Preload("Game").Preload("WinnerItem").
		Where("status = ? AND published_at IS NULL", models.DrawStatusDrawn).
		Where("image_url IS NOT NULL OR image_error IS NOT NULL").
		Order("scheduled_at asc").
		Limit(s.ScanLimit).
		Find(&draws).Error
	if err != nil {
		log.Printf("❌ [PUBLISH] Scan failed: %v", err)
		return
	}
	if len(draws) == 0 {
		return
	}

	log.Printf("📢 Publishing %d draw(s)...", len(draws))

	for i := range draws {
		if _, err := s.PublishDraw(&draws[i]); err != nil {
			log.Printf("❌ [PUBLISH] Draw %s: %v", draws[i].ID, err)
		}
	}
}

// PublishDraw flips the draw to PUBLISHED and fans the result out. The flip
// happens first: if two ticks race, the loser's RowsAffected is zero and it
// sends nothing.
func (s *PublicationService) PublishDraw(draw *models.Draw) (*PublishResult, error) {
	out := &PublishResult{DrawID: draw.ID}

	now := time.Now()
	result := s.DB.Model(&models.Draw{}).
		Where("id = ? AND status = ?", draw.ID, models.DrawStatusDrawn).
		Updates(map[string]any{
			"status":       models.DrawStatusPublished,
			"published_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return out, nil // another tick owns this draw
	}
	out.Published = true
	draw.Status = models.DrawStatusPublished
	draw.PublishedAt = &now
	metrics.DrawsPublished.Inc()

	var gameChannels []models.GameChannel
	err := s.DB.Where("game_id = ? AND is_active = ?", draw.GameID, true).
		Find(&gameChannels).Error
	if err != nil {
		return out, fmt.Errorf("failed to load channels: %w", err)
	}
	if len(gameChannels) == 0 {
		log.Printf("📢 Draw %s published with no active channels", draw.ID)
	}

	out.Results = s.dispatch(draw, gameChannels)

	sent := 0
	for _, r := range out.Results {
		if r.Status == models.PublicationStatusSent {
			sent++
		}
	}
	log.Printf("✅ Draw %s published: %d/%d channel(s) delivered", draw.ID, sent, len(out.Results))

	s.Events.Emit("draw:published", fiber.Map{
		"drawId":   draw.ID,
		"gameId":   draw.GameID,
		"channels": out.Results,
	})
	s.Events.Audit(models.AuditDrawPublished, "Draw", draw.ID, map[string]any{
		"status":    models.DrawStatusPublished,
		"delivered": sent,
		"channels":  len(out.Results),
	})

	return out, nil
}

// dispatch sends to every channel concurrently. Throttled channel types are
// serialized downstream by the registry's worker, so launching them all here
// is safe.
func (s *PublicationService) dispatch(draw *models.Draw, gameChannels []models.GameChannel) []ChannelResult {
	results := make([]ChannelResult, len(gameChannels))
	var wg sync.WaitGroup

	for i, channel := range gameChannels {
		wg.Add(1)
		go func(i int, channel models.GameChannel) {
			defer wg.Done()
			results[i] = s.sendToChannel(draw, channel)
		}(i, channel)
	}
	wg.Wait()

	return results
}

// sendToChannel renders, delivers and records one channel's publication row.
func (s *PublicationService) sendToChannel(draw *models.Draw, channel models.GameChannel) ChannelResult {
	res := ChannelResult{Channel: channel.ChannelType}

	pub := models.DrawPublication{
		ID:      uuid.NewString(),
		DrawID:  draw.ID,
		Channel: channel.ChannelType,
		Status:  models.PublicationStatusPending,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draw_id"}, {Name: "channel"}},
		DoUpdates: clause.Assignments(map[string]any{"status": models.PublicationStatusPending}),
	}).Create(&pub).Error
	if err != nil {
		res.Status = models.PublicationStatusFailed
		res.Error = err.Error()
		return res
	}

	text, err := s.Templates.RenderDrawMessage(channel.MessageTemplate, draw)
	if err != nil {
		return s.recordFailure(draw.ID, channel.ChannelType, fmt.Errorf("template render: %w", err))
	}

	imageURL := ""
	if draw.ImageURL != nil {
		imageURL = *draw.ImageURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.SendTimeout)
	defer cancel()

	sendRes, err := s.Registry.Send(ctx, channel, text, imageURL)
	if errors.Is(err, channels.ErrInstancePaused) {
		// Paused is intentional operator state, not a failure: no retry
		// counting, the retry worker never picks it up. The row is marked
		// SKIPPED; the manual per-channel retry endpoint resends it after
		// an unpause.
		log.Printf("⏸️ Channel %s paused, skipping draw %s", channel.ChannelType, draw.ID)
		metrics.ChannelSends.WithLabelValues(channel.ChannelType, "skipped").Inc()
		uerr := s.DB.Model(&models.DrawPublication{}).
			Where("draw_id = ? AND channel = ?", draw.ID, channel.ChannelType).
			Update("status", models.PublicationStatusSkipped).Error
		if uerr != nil {
			log.Printf("⚠️ [PUBLISH] Could not mark %s skipped for draw %s: %v", channel.ChannelType, draw.ID, uerr)
		}
		res.Status = models.PublicationStatusSkipped
		return res
	}
	if err != nil {
		return s.recordFailure(draw.ID, channel.ChannelType, err)
	}

	updates := map[string]any{
		"status":  models.PublicationStatusSent,
		"sent_at": time.Now(),
		"error":   nil,
	}
	if sendRes != nil && sendRes.ExternalID != "" {
		updates["external_id"] = sendRes.ExternalID
		res.ExternalID = sendRes.ExternalID
	}
	err = s.DB.Model(&models.DrawPublication{}).
		Where("draw_id = ? AND channel = ?", draw.ID, channel.ChannelType).
		Updates(updates).Error
	if err != nil {
		log.Printf("⚠️ [PUBLISH] Delivered to %s but failed to record it for draw %s: %v",
			channel.ChannelType, draw.ID, err)
	}

	metrics.ChannelSends.WithLabelValues(channel.ChannelType, "sent").Inc()
	log.Printf("📨 Draw %s sent to %s", draw.ID, channel.ChannelType)
	res.Status = models.PublicationStatusSent
	return res
}

func (s *PublicationService) recordFailure(drawID, channelType string, sendErr error) ChannelResult {
	msg := sendErr.Error()
	err := s.DB.Model(&models.DrawPublication{}).
		Where("draw_id = ? AND channel = ?", drawID, channelType).
		Updates(map[string]any{
			"status":  models.PublicationStatusFailed,
			"error":   &msg,
			"retries": gorm.Expr("retries + 1"),
		}).Error
	if err != nil {
		log.Printf("⚠️ [PUBLISH] Could not record failure for draw %s channel %s: %v", drawID, channelType, err)
	}

	metrics.ChannelSends.WithLabelValues(channelType, "failed").Inc()
	log.Printf("❌ [PUBLISH] Draw %s to %s failed: %v", drawID, channelType, sendErr)
	return ChannelResult{
		Channel: channelType,
		Status:  models.PublicationStatusFailed,
		Error:   msg,
	}
}

// RepublishToChannel re-attempts a single channel of an already-published
// draw. Used by the retry worker and the manual admin endpoint.
func (s *PublicationService) RepublishToChannel(drawID, channelType string) (*ChannelResult, error) {
	var draw models.Draw
	err := s.DB.Preload("Game").Preload("WinnerItem").First(&draw, "id = ?", drawID).Error
	if err != nil {
		return nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.Status != models.DrawStatusPublished {
		return nil, fmt.Errorf("draw %s is %s, only published draws can be re-sent", drawID, draw.Status)
	}

	var channel models.GameChannel
	err = s.DB.Where("game_id = ? AND channel_type = ? AND is_active = ?",
		draw.GameID, channelType, true).
		First(&channel).Error
	if err != nil {
		return nil, fmt.Errorf("no active %s channel for game %s", channelType, draw.GameID)
	}

	res := s.sendToChannel(&draw, channel)
	return &res, nil
}

// TriggerPublish is the manual admin entry point: publish one DRAWN draw now,
// without waiting for the image scan.
func (s *PublicationService) TriggerPublish(c *fiber.Ctx) error {
	var draw models.Draw
	err := s.DB.Preload("Game").Preload("WinnerItem").First(&draw, "id = ?", c.Params("id")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draw not found"})
	}
	if draw.Status != models.DrawStatusDrawn {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("draw is %s, only executed draws can be published", draw.Status),
		})
	}

	result, err := s.PublishDraw(&draw)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// RepublishDraw is the manual admin entry point for one channel retry.
func (s *PublicationService) RepublishDraw(c *fiber.Ctx) error {
	res, err := s.RepublishToChannel(c.Params("id"), c.Params("channel"))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// GetDrawPublications lists the per-channel delivery state of a draw.
func (s *PublicationService) GetDrawPublications(c *fiber.Ctx) error {
	var pubs []models.DrawPublication
	err := s.DB.Where("draw_id = ?", c.Params("id")).Find(&pubs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list publications"})
	}
	return c.JSON(pubs)
}
