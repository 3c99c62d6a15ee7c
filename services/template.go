package services

import (
	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DrawTemplateService is the template provider: per-game weekday schedules
// the generator materializes into draws.
type DrawTemplateService struct {
	DB *gorm.DB
}

func NewDrawTemplateService(db *gorm.DB) *DrawTemplateService {
	return &DrawTemplateService{DB: db}
}

// GetActiveForDay returns active templates whose DaysOfWeek include weekday
// (1-7, Mon-Sun). DaysOfWeek is a serialized column, so membership is
// filtered here rather than in SQL.
func (s *DrawTemplateService) GetActiveForDay(weekday int) ([]models.DrawTemplate, error) {
	var templates []models.DrawTemplate
	err := s.DB.Preload("Game").
		Where("is_active = ?", true).
		Find(&templates).Error
	if err != nil {
		return nil, err
	}

	matched := templates[:0]
	for _, t := range templates {
		for _, d := range t.DaysOfWeek {
			if d == weekday {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched, nil
}

func (s *DrawTemplateService) ListTemplates(c *fiber.Ctx) error {
	var templates []models.DrawTemplate
	q := s.DB.Order("created_at desc")
	if gameID := c.Query("game_id"); gameID != "" {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list templates"})
	}
	return c.JSON(templates)
}

func (s *DrawTemplateService) CreateTemplate(c *fiber.Ctx) error {
	var input struct {
		GameID      string   `json:"game_id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		DaysOfWeek  []int    `json:"days_of_week"`
		DrawTimes   []string `json:"draw_times"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.GameID == "" || len(input.DrawTimes) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "game_id and draw_times are required"})
	}
	for _, d := range input.DaysOfWeek {
		if d < 1 || d > 7 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days_of_week must be 1-7"})
		}
	}

	template := models.DrawTemplate{
		ID:          uuid.NewString(),
		GameID:      input.GameID,
		Name:        input.Name,
		Description: input.Description,
		DaysOfWeek:  input.DaysOfWeek,
		DrawTimes:   input.DrawTimes,
		IsActive:    true,
	}
	if err := s.DB.Create(&template).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create template"})
	}
	return c.Status(fiber.StatusCreated).JSON(template)
}

func (s *DrawTemplateService) UpdateTemplate(c *fiber.Ctx) error {
	var template models.DrawTemplate
	if err := s.DB.First(&template, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "template not found"})
	}

	var input struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		DaysOfWeek  []int    `json:"days_of_week"`
		DrawTimes   []string `json:"draw_times"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.DaysOfWeek != nil {
		for _, d := range input.DaysOfWeek {
			if d < 1 || d > 7 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days_of_week must be 1-7"})
			}
		}
		template.DaysOfWeek = input.DaysOfWeek
	}
	if input.DrawTimes != nil {
		template.DrawTimes = input.DrawTimes
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := s.DB.Save(&template).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update template"})
	}
	return c.JSON(template)
}
