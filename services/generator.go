package services

import (
	"fmt"
	"log"
	"time"

	"lottery-publish-system/metrics"
	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrawGeneratorService materializes a day's draws from the per-weekday
// templates. Generation is idempotent: re-running for a date that already
// has draws creates zero new rows.
type DrawGeneratorService struct {
	DB        *gorm.DB
	Templates *DrawTemplateService
	Pauses    *DrawPauseService
	Events    *EventService
}

func NewDrawGeneratorService(db *gorm.DB, templates *DrawTemplateService, pauses *DrawPauseService, events *EventService) *DrawGeneratorService {
	return &DrawGeneratorService{DB: db, Templates: templates, Pauses: pauses, Events: events}
}

type GenerationResult struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

func (s *DrawGeneratorService) GenerateDailyDraws(now time.Time) (*GenerationResult, error) {
	loc := utils.DrawLocation()
	today := utils.StartOfDay(now, loc)
	weekday := utils.ISOWeekday(now, loc)

	result := &GenerationResult{Date: today.Format("2006-01-02")}

	templates, err := s.Templates.GetActiveForDay(weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	if len(templates) == 0 {
		log.Printf("📅 No active templates for weekday %d", weekday)
		return result, nil
	}

	for _, template := range templates {
		paused, err := s.Pauses.IsGamePausedOnDate(template.GameID, today)
		if err != nil {
			log.Printf("⚠️ [GENERATOR] Pause lookup failed for game %s: %v", template.GameID, err)
			continue
		}
		if paused {
			log.Printf("⏸️ Game %s is paused today, skipping %d draw(s)", template.GameID, len(template.DrawTimes))
			result.Skipped += len(template.DrawTimes)
			continue
		}

		for _, hhmm := range template.DrawTimes {
			scheduledAt, err := utils.CombineDateTime(today, hhmm, loc)
			if err != nil {
				log.Printf("⚠️ [GENERATOR] Template %s has invalid time %q: %v", template.ID, hhmm, err)
				continue
			}

			var existing int64
			err = s.DB.Model(&models.Draw{}).
				Where("game_id = ? AND scheduled_at = ?", template.GameID, scheduledAt).
				Count(&existing).Error
			if err != nil {
				log.Printf("⚠️ [GENERATOR] Existence check failed for %s %s: %v", template.GameID, hhmm, err)
				continue
			}
			if existing > 0 {
				result.Skipped++
				continue
			}

			draw := models.Draw{
				ID:          uuid.NewString(),
				GameID:      template.GameID,
				TemplateID:  template.ID,
				ScheduledAt: scheduledAt,
				Status:      models.DrawStatusScheduled,
			}
			if err := s.DB.Create(&draw).Error; err != nil {
				log.Printf("⚠️ [GENERATOR] Failed to create draw %s %s: %v", template.GameID, hhmm, err)
				continue
			}
			result.Created++
			metrics.DrawsGenerated.Inc()
		}
	}

	log.Printf("✅ Draws generated for %s: %d created, %d skipped", result.Date, result.Created, result.Skipped)

	s.Events.Emit("draws:generated", result)
	s.Events.Audit(models.AuditDrawsGenerated, "Draw", "batch", map[string]any{
		"date":    result.Date,
		"created": result.Created,
		"skipped": result.Skipped,
	})

	return result, nil
}

// TriggerGeneration is the manual admin entry point.
func (s *DrawGeneratorService) TriggerGeneration(c *fiber.Ctx) error {
	result, err := s.GenerateDailyDraws(time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
