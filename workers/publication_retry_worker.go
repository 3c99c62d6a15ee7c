package workers

import (
	"context"
	"log"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/services"

	"gorm.io/gorm"
)

// PublicationRetryWorker re-attempts failed channel deliveries. A publication
// qualifies once it is FAILED, under the retry cap, and has not been touched
// for the cooldown window. Paused-instance skips stay PENDING and are never
// picked up here.
type PublicationRetryWorker struct {
	db        *gorm.DB
	publisher *services.PublicationService
	interval  time.Duration
	cooldown  time.Duration
	maxRetry  int
}

func NewPublicationRetryWorker(db *gorm.DB, publisher *services.PublicationService) *PublicationRetryWorker {
	return &PublicationRetryWorker{
		db:        db,
		publisher: publisher,
		interval:  1 * time.Minute,
		cooldown:  5 * time.Minute,
		maxRetry:  3,
	}
}

func (w *PublicationRetryWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Publication Retry Worker…")
	go w.run(ctx)
}

func (w *PublicationRetryWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 Publication Retry Worker stopped")
			return
		case <-ticker.C:
			w.retryBatch()
		}
	}
}

func (w *PublicationRetryWorker) retryBatch() {
	cutoff := time.Now().Add(-w.cooldown)

	var pubs []models.DrawPublication
	err := w.db.Where("status = ? AND retries < ? AND updated_at <= ?",
		models.PublicationStatusFailed, w.maxRetry, cutoff).
		Order("updated_at asc").
		Limit(20).
		Find(&pubs).Error
	if err != nil {
		log.Printf("❌ [RETRY] Scan failed: %v", err)
		return
	}
	if len(pubs) == 0 {
		return
	}

	log.Printf("🔁 Retrying %d failed publication(s)...", len(pubs))

	for _, pub := range pubs {
		res, err := w.publisher.RepublishToChannel(pub.DrawID, pub.Channel)
		if err != nil {
			log.Printf("⚠️ [RETRY] Draw %s channel %s: %v", pub.DrawID, pub.Channel, err)
			continue
		}
		if res.Status == models.PublicationStatusSent {
			log.Printf("✅ Retry delivered draw %s to %s", pub.DrawID, pub.Channel)
		}
	}
}
