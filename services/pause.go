package services

import (
	"time"

	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrawPauseService is the pause registry: it answers whether a game is
// suspended on a date and manages pause windows. The generator only reads.
type DrawPauseService struct {
	DB *gorm.DB
}

func NewDrawPauseService(db *gorm.DB) *DrawPauseService {
	return &DrawPauseService{DB: db}
}

// IsGamePausedOnDate reports whether any active pause window covers date.
func (s *DrawPauseService) IsGamePausedOnDate(gameID string, date time.Time) (bool, error) {
	var count int64
	err := s.DB.Model(&models.DrawPause{}).
		Where("game_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?",
			gameID, true, date, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DrawPauseService) ListPauses(c *fiber.Ctx) error {
	var pauses []models.DrawPause
	q := s.DB.Order("start_date desc")
	if gameID := c.Query("game_id"); gameID != "" {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Find(&pauses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list pauses"})
	}
	return c.JSON(pauses)
}

func (s *DrawPauseService) CreatePause(c *fiber.Ctx) error {
	var input struct {
		GameID    string    `json:"game_id"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		Reason    string    `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.GameID == "" || input.EndDate.Before(input.StartDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id and a valid date range are required"})
	}

	pause := models.DrawPause{
		ID:        uuid.NewString(),
		GameID:    input.GameID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Reason:    input.Reason,
		IsActive:  true,
	}
	if err := s.DB.Create(&pause).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create pause"})
	}
	return c.Status(fiber.StatusCreated).JSON(pause)
}

func (s *DrawPauseService) DeactivatePause(c *fiber.Ctx) error {
	result := s.DB.Model(&models.DrawPause{}).
		Where("id = ?", c.Params("id")).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to deactivate pause"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "pause not found"})
	}
	return c.JSON(fiber.Map{"deactivated": true})
}
