package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"lottery-publish-system/channels"
	"lottery-publish-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubSender stands in for the channel registry so delivery outcomes can be
// scripted without real providers.
type stubSender struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *stubSender) Send(ctx context.Context, channel models.GameChannel, text, imageURL string) (*channels.SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &channels.SendResult{ExternalID: "ext-1", SentCount: 1}, nil
}

func (f *stubSender) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func publicationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Game{}, &models.GameItem{}, &models.Draw{},
		&models.GameChannel{}, &models.DrawPublication{}, &models.AuditLog{},
	))
	return db
}

func newTestPublisher(db *gorm.DB, sender ChannelSender) *PublicationService {
	return &PublicationService{
		DB:          db,
		Registry:    sender,
		Templates:   NewMessageTemplateService(),
		Events:      NewEventService(db, nil),
		ScanLimit:   10,
		SendTimeout: time.Second,
	}
}

func seedDrawnDraw(t *testing.T, db *gorm.DB) *models.Draw {
	t.Helper()

	game := models.Game{ID: "g1", Name: "Lotto Activo", Slug: "lotto-activo", Type: models.GameTypeAnimalitos, IsActive: true}
	require.NoError(t, db.Create(&game).Error)

	item := models.GameItem{ID: "i1", GameID: game.ID, Number: "5", Name: "León", IsActive: true}
	require.NoError(t, db.Create(&item).Error)

	now := time.Now()
	imageURL := "https://cdn.example.com/draws/d1.png"
	winnerID := item.ID
	draw := models.Draw{
		ID:           "d1",
		GameID:       game.ID,
		ScheduledAt:  now.Add(-time.Hour),
		Status:       models.DrawStatusDrawn,
		WinnerItemID: &winnerID,
		DrawnAt:      &now,
		ImageURL:     &imageURL,
	}
	require.NoError(t, db.Create(&draw).Error)

	require.NoError(t, db.Create(&models.GameChannel{
		ID:          "gc1",
		GameID:      game.ID,
		ChannelType: models.ChannelTypeTelegram,
		InstanceID:  "inst-1",
		ChatID:      "-1001",
		IsActive:    true,
	}).Error)

	draw.Game = &game
	draw.WinnerItem = &item
	return &draw
}

func TestPublishDrawFlipsExactlyOnce(t *testing.T) {
	db := publicationTestDB(t)
	draw := seedDrawnDraw(t, db)

	sender := &stubSender{}
	svc := newTestPublisher(db, sender)

	first, err := svc.PublishDraw(draw)
	require.NoError(t, err)
	assert.True(t, first.Published)
	require.Len(t, first.Results, 1)
	assert.Equal(t, models.PublicationStatusSent, first.Results[0].Status)
	assert.Equal(t, "ext-1", first.Results[0].ExternalID)
	assert.Equal(t, 1, sender.sendCount())

	// A racing tick still holds the DRAWN snapshot. Its guarded update
	// touches zero rows, so it must report nothing published and send
	// nothing.
	stale := *draw
	stale.Status = models.DrawStatusDrawn
	stale.PublishedAt = nil
	second, err := svc.PublishDraw(&stale)
	require.NoError(t, err)
	assert.False(t, second.Published)
	assert.Empty(t, second.Results)
	assert.Equal(t, 1, sender.sendCount())

	var stored models.Draw
	require.NoError(t, db.First(&stored, "id = ?", draw.ID).Error)
	assert.Equal(t, models.DrawStatusPublished, stored.Status)
	require.NotNil(t, stored.PublishedAt)

	var pub models.DrawPublication
	require.NoError(t, db.First(&pub, "draw_id = ? AND channel = ?", draw.ID, models.ChannelTypeTelegram).Error)
	assert.Equal(t, models.PublicationStatusSent, pub.Status)
	require.NotNil(t, pub.SentAt)
}

func TestPublishDrawPausedInstanceSkips(t *testing.T) {
	db := publicationTestDB(t)
	draw := seedDrawnDraw(t, db)

	sender := &stubSender{err: channels.ErrInstancePaused}
	svc := newTestPublisher(db, sender)

	out, err := svc.PublishDraw(draw)
	require.NoError(t, err)
	assert.True(t, out.Published)
	require.Len(t, out.Results, 1)
	assert.Equal(t, models.PublicationStatusSkipped, out.Results[0].Status)
	assert.Empty(t, out.Results[0].Error)

	// Skips are operator intent, not failures: no retry counting, no error
	// recorded, and the retry sweep (FAILED only) leaves the row alone.
	var pub models.DrawPublication
	require.NoError(t, db.First(&pub, "draw_id = ? AND channel = ?", draw.ID, models.ChannelTypeTelegram).Error)
	assert.Equal(t, models.PublicationStatusSkipped, pub.Status)
	assert.Zero(t, pub.Retries)
	assert.Nil(t, pub.Error)
}
