package services

import (
	"errors"
	"fmt"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DrawService exposes the draw read API and the operator override for the
// preselected item.
type DrawService struct {
	DB     *gorm.DB
	Events *EventService
}

func NewDrawService(db *gorm.DB, events *EventService) *DrawService {
	return &DrawService{DB: db, Events: events}
}

// GetDraws lists draws with optional game_id, status and date (YYYY-MM-DD)
// filters.
func (s *DrawService) GetDraws(c *fiber.Ctx) error {
	q := s.DB.Preload("Game").Preload("WinnerItem")

	if gameID := c.Query("game_id"); gameID != "" {
		q = q.Where("game_id = ?", gameID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		loc := utils.DrawLocation()
		day, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date, use YYYY-MM-DD"})
		}
		q = q.Where("scheduled_at >= ? AND scheduled_at < ?", day, day.AddDate(0, 0, 1))
	}

	var draws []models.Draw
	if err := q.Order("scheduled_at asc").Limit(200).Find(&draws).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch draws"})
	}
	return c.JSON(draws)
}

func (s *DrawService) GetDrawByID(c *fiber.Ctx) error {
	var draw models.Draw
	err := s.DB.Preload("Game").Preload("PreselectedItem").Preload("WinnerItem").
		First(&draw, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draw not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(draw)
}

type preselectInput struct {
	ItemID string `json:"item_id"`
}

// SetPreselection lets an operator pin the outcome of an upcoming draw.
// Allowed while the draw is SCHEDULED or CLOSED; once DRAWN the winner is
// immutable.
func (s *DrawService) SetPreselection(c *fiber.Ctx) error {
	var draw models.Draw
	if err := s.DB.First(&draw, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "draw not found"})
	}

	var input preselectInput
	if err := c.BodyParser(&input); err != nil || input.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item_id is required"})
	}

	var item models.GameItem
	err := s.DB.First(&item, "id = ? AND game_id = ? AND is_active = ?",
		input.ItemID, draw.GameID, true).Error
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "item does not belong to this game or is inactive"})
	}

	result := s.DB.Model(&models.Draw{}).
		Where("id = ? AND status IN ?", draw.ID,
			[]string{models.DrawStatusScheduled, models.DrawStatusClosed}).
		Update("preselected_item_id", input.ItemID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to set preselection"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("draw is %s, preselection can no longer change", draw.Status),
		})
	}

	s.Events.Audit(models.AuditPreselectSet, "Draw", draw.ID, map[string]any{
		"itemId":     item.ID,
		"itemNumber": item.Number,
		"setBy":      c.Get("X-User-ID"),
	})

	return c.JSON(fiber.Map{
		"draw_id":     draw.ID,
		"preselected": fiber.Map{"id": item.ID, "number": item.Number, "name": item.Name},
	})
}
