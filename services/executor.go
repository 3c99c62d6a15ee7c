package services

import (
	"log"
	"time"

	"lottery-publish-system/metrics"
	"lottery-publish-system/models"

	"gorm.io/gorm"
)

// DrawExecutorService turns a CLOSED draw into a DRAWN one at its scheduled
// instant: the preselection becomes the official winner, prizes and tripletas
// settle, stats are computed, and the result image render kicks off in the
// background.
type DrawExecutorService struct {
	DB       *gorm.DB
	Events   *EventService
	Prizes   *PrizeProcessorService
	Tripleta *TripletaService
	Stats    *DrawStatsService
	Images   *DrawImageService
	Notifier *AdminNotifierService
}

func NewDrawExecutorService(db *gorm.DB, events *EventService, prizes *PrizeProcessorService,
	tripleta *TripletaService, stats *DrawStatsService, images *DrawImageService,
	notifier *AdminNotifierService) *DrawExecutorService {
	return &DrawExecutorService{
		DB:       db,
		Events:   events,
		Prizes:   prizes,
		Tripleta: tripleta,
		Stats:    stats,
		Images:   images,
		Notifier: notifier,
	}
}

// ExecuteDueDraws executes every CLOSED draw whose scheduled instant has
// arrived. A draw missed by an outage executes late on the next tick rather
// than getting stuck in CLOSED.
func (s *DrawExecutorService) ExecuteDueDraws(now time.Time) {
	var draws []models.Draw
	err := s.DB.Preload("Game").Preload("PreselectedItem").
		Where("status = ? AND scheduled_at <= ?", models.DrawStatusClosed, now).
		Find(&draws).Error
	if err != nil {
		log.Printf("❌ [EXECUTOR] Scan failed: %v", err)
		return
	}

	for i := range draws {
		if err := s.ExecuteDraw(&draws[i], now); err != nil {
			log.Printf("❌ [EXECUTOR] Draw %s: %v", draws[i].ID, err)
		}
	}
}

// ExecuteDraw promotes the preselection to winner and runs settlement. The
// guarded status flip makes execution exactly-once under concurrent ticks.
func (s *DrawExecutorService) ExecuteDraw(draw *models.Draw, now time.Time) error {
	if draw.PreselectedItemID == nil {
		// Should not happen after a normal close; leave for an operator.
		log.Printf("⚠️ [EXECUTOR] Draw %s has no preselected item, skipping", draw.ID)
		return nil
	}

	result := s.DB.Model(&models.Draw{}).
		Where("id = ? AND status = ?", draw.ID, models.DrawStatusClosed).
		Updates(map[string]any{
			"status":         models.DrawStatusDrawn,
			"winner_item_id": *draw.PreselectedItemID,
			"drawn_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil // executed by a concurrent tick
	}

	draw.Status = models.DrawStatusDrawn
	draw.WinnerItemID = draw.PreselectedItemID
	draw.DrawnAt = &now
	draw.WinnerItem = draw.PreselectedItem

	metrics.DrawsExecuted.Inc()

	winnerNumber := ""
	winnerName := ""
	if draw.WinnerItem != nil {
		winnerNumber = draw.WinnerItem.Number
		winnerName = draw.WinnerItem.Name
	}
	log.Printf("🎉 Draw executed: %s | winner %s - %s", draw.ID, winnerNumber, winnerName)

	// Image rendering must never delay settlement.
	if s.Images != nil {
		go s.Images.RenderDrawImage(draw.ID)
	}

	if _, err := s.Prizes.ProcessPrizesForDraw(draw.ID); err != nil {
		log.Printf("⚠️ [EXECUTOR] Prize processing failed for draw %s: %v", draw.ID, err)
	}

	if _, err := s.Tripleta.SettleForDraw(draw.ID); err != nil {
		log.Printf("⚠️ [EXECUTOR] Tripleta settlement failed for draw %s: %v", draw.ID, err)
	}

	fin := s.Stats.ComputeDrawStats(draw.ID)

	s.Events.Emit("draw:executed", map[string]any{
		"drawId": draw.ID,
		"gameId": draw.GameID,
		"winnerItem": map[string]any{
			"number": winnerNumber,
			"name":   winnerName,
		},
		"totalSales":  fin.TotalSales,
		"totalPayout": fin.TotalPayout,
		"profit":      fin.Profit,
	})
	s.Events.Audit(models.AuditDrawExecuted, "Draw", draw.ID, map[string]any{
		"status":       models.DrawStatusDrawn,
		"winnerItemId": *draw.WinnerItemID,
		"totalSales":   fin.TotalSales,
		"profit":       fin.Profit,
	})

	if s.Notifier != nil {
		if err := s.Notifier.NotifyDrawResult(draw, fin); err != nil {
			log.Printf("⚠️ [EXECUTOR] Admin notification failed for draw %s: %v", draw.ID, err)
		}
	}

	return nil
}
