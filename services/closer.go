package services

import (
	"context"
	"log"
	"math/rand"
	"time"

	"lottery-publish-system/metrics"
	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"gorm.io/gorm"
)

// DrawCloserService freezes wagering a fixed lead time before the scheduled
// instant and pre-selects a candidate outcome. An operator's manual
// preselection is authoritative: the closer only fills the field when empty
// and never overwrites an existing value.
type DrawCloserService struct {
	DB       *gorm.DB
	Events   *EventService
	Importer *ExternalTicketImporter
	Notifier *AdminNotifierService

	// LeadTime is how long before the scheduled instant a draw closes.
	LeadTime time.Duration
}

func NewDrawCloserService(db *gorm.DB, events *EventService, importer *ExternalTicketImporter, notifier *AdminNotifierService) *DrawCloserService {
	return &DrawCloserService{
		DB:       db,
		Events:   events,
		Importer: importer,
		Notifier: notifier,
		LeadTime: 5 * time.Minute,
	}
}

// CloseDueDraws closes every SCHEDULED draw whose scheduled instant falls
// inside [now, now+LeadTime]. Safe to re-run: a closed draw no longer matches
// the scan.
func (s *DrawCloserService) CloseDueDraws(now time.Time) {
	var draws []models.Draw
	err := s.DB.Preload("Game").
		Where("status = ? AND scheduled_at >= ? AND scheduled_at <= ?",
			models.DrawStatusScheduled, now, now.Add(s.LeadTime)).
		Find(&draws).Error
	if err != nil {
		log.Printf("❌ [CLOSER] Scan failed: %v", err)
		return
	}
	if len(draws) == 0 {
		return
	}

	log.Printf("🔒 Closing %d draw(s)...", len(draws))

	for i := range draws {
		if err := s.closeDraw(&draws[i], now); err != nil {
			log.Printf("❌ [CLOSER] Draw %s: %v", draws[i].ID, err)
		}
	}
}

func (s *DrawCloserService) closeDraw(draw *models.Draw, now time.Time) error {
	// Best-effort import of externally-originated wagers; failure is logged
	// and never aborts closing.
	if s.Importer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		imported, err := s.Importer.ImportTickets(ctx, draw)
		cancel()
		if err != nil {
			log.Printf("⚠️ [CLOSER] External sales import failed for draw %s: %v", draw.ID, err)
		} else if imported.Imported > 0 {
			log.Printf("📥 Imported %d external ticket(s) for draw %s (%d skipped)",
				imported.Imported, draw.ID, imported.Skipped)
		}
	}

	operatorPick := draw.PreselectedItemID != nil
	var selected *models.GameItem

	if operatorPick {
		var item models.GameItem
		if err := s.DB.First(&item, "id = ?", *draw.PreselectedItemID).Error; err == nil {
			selected = &item
		}
	} else {
		var items []models.GameItem
		err := s.DB.Where("game_id = ? AND is_active = ?", draw.GameID, true).Find(&items).Error
		if err != nil {
			return err
		}
		if len(items) == 0 {
			// Data invariant violation: skip this tick, retried on the next.
			log.Printf("❌ [CLOSER] No active items for game %s, skipping draw %s", draw.GameID, draw.ID)
			return nil
		}

		used, err := s.usedItemsToday(draw.GameID, draw.ScheduledAt)
		if err != nil {
			log.Printf("⚠️ [CLOSER] Used-items lookup failed for game %s: %v", draw.GameID, err)
			used = nil
		}
		selected = PickPreselection(items, used)
	}

	updates := map[string]any{
		"status":    models.DrawStatusClosed,
		"closed_at": now,
	}
	where := s.DB.Model(&models.Draw{}).Where("id = ? AND status = ?", draw.ID, models.DrawStatusScheduled)
	if !operatorPick && selected != nil {
		updates["preselected_item_id"] = selected.ID
		// An operator may have picked between our read and this write; the
		// NULL guard keeps their choice.
		where = where.Where("preselected_item_id IS NULL")
	}

	result := where.Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race to an operator edit or another tick; next scan will
		// pick the draw up again if it is still SCHEDULED.
		return nil
	}

	metrics.DrawsClosed.Inc()

	method := "random"
	if operatorPick {
		method = "admin"
	}
	number := ""
	name := ""
	if selected != nil {
		number = selected.Number
		name = selected.Name
	}
	log.Printf("🔒 Draw closed: %s at %s | preselection (%s): %s - %s",
		draw.GameID, draw.ScheduledAt.In(utils.DrawLocation()).Format("15:04"), method, number, name)

	payload := map[string]any{
		"drawId":      draw.ID,
		"gameId":      draw.GameID,
		"scheduledAt": draw.ScheduledAt,
	}
	if selected != nil {
		payload["preselectedItem"] = map[string]any{"number": number, "name": name}
	}
	s.Events.Emit("draw:closed", payload)
	s.Events.Audit(models.AuditDrawClosed, "Draw", draw.ID, map[string]any{
		"status":          models.DrawStatusClosed,
		"selectionMethod": method,
		"preselected":     number,
	})

	if s.Notifier != nil && selected != nil {
		if err := s.Notifier.NotifyPrewinnerSelected(draw, selected, method); err != nil {
			log.Printf("⚠️ [CLOSER] Admin notification failed for draw %s: %v", draw.ID, err)
		}
	}

	return nil
}

// usedItemsToday collects items already preselected or drawn for the game on
// the draw's calendar day, so the same number does not win twice in one day.
func (s *DrawCloserService) usedItemsToday(gameID string, ref time.Time) (map[string]bool, error) {
	loc := utils.DrawLocation()
	dayStart := utils.StartOfDay(ref, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var draws []models.Draw
	err := s.DB.Select("preselected_item_id", "winner_item_id").
		Where("game_id = ? AND scheduled_at >= ? AND scheduled_at < ?", gameID, dayStart, dayEnd).
		Where("preselected_item_id IS NOT NULL OR winner_item_id IS NOT NULL").
		Find(&draws).Error
	if err != nil {
		return nil, err
	}

	used := make(map[string]bool)
	for _, d := range draws {
		if d.PreselectedItemID != nil {
			used[*d.PreselectedItemID] = true
		}
		if d.WinnerItemID != nil {
			used[*d.WinnerItemID] = true
		}
	}
	return used, nil
}

// PickPreselection chooses uniformly among candidate items, preferring those
// not yet used today. When everything was used the full set is eligible
// again.
func PickPreselection(items []models.GameItem, used map[string]bool) *models.GameItem {
	candidates := FilterUnused(items, used)
	if len(candidates) == 0 {
		candidates = items
	}
	if len(candidates) == 0 {
		return nil
	}
	pick := candidates[rand.Intn(len(candidates))]
	return &pick
}

// FilterUnused keeps the items whose id is not in used.
func FilterUnused(items []models.GameItem, used map[string]bool) []models.GameItem {
	if len(used) == 0 {
		return items
	}
	var out []models.GameItem
	for _, item := range items {
		if !used[item.ID] {
			out = append(out, item)
		}
	}
	return out
}
