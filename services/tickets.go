package services

import (
	"fmt"

	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketService creates and lists single-draw wagers. Balance debits run
// inside a transaction with a guarded decrement so concurrent wagers by the
// same user cannot race past an insufficient-balance check.
type TicketService struct {
	DB     *gorm.DB
	Events *EventService
}

func NewTicketService(db *gorm.DB, events *EventService) *TicketService {
	return &TicketService{DB: db, Events: events}
}

type ticketDetailInput struct {
	GameItemID string  `json:"game_item_id"`
	Amount     float64 `json:"amount"`
}

type createTicketInput struct {
	UserID  string              `json:"user_id"`
	DrawID  string              `json:"draw_id"`
	Details []ticketDetailInput `json:"details"`
}

func (s *TicketService) CreateTicket(c *fiber.Ctx) error {
	var input createTicketInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if input.UserID == "" || input.DrawID == "" || len(input.Details) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id, draw_id and details are required"})
	}

	ticket, err := s.PlaceWager(input)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	s.Events.Emit("ticket:created", fiber.Map{
		"ticketId": ticket.ID,
		"drawId":   ticket.DrawID,
		"amount":   ticket.TotalAmount,
	})
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// PlaceWager validates the draw and items, then atomically debits the user
// and writes the ticket rows.
func (s *TicketService) PlaceWager(input createTicketInput) (*models.Ticket, error) {
	var draw models.Draw
	if err := s.DB.First(&draw, "id = ?", input.DrawID).Error; err != nil {
		return nil, fmt.Errorf("draw not found")
	}
	if draw.Status != models.DrawStatusScheduled {
		return nil, fmt.Errorf("wagering is closed for this draw")
	}

	total := 0.0
	itemIDs := make([]string, 0, len(input.Details))
	for _, d := range input.Details {
		if d.Amount <= 0 {
			return nil, fmt.Errorf("detail amounts must be positive")
		}
		total += d.Amount
		itemIDs = append(itemIDs, d.GameItemID)
	}

	var items []models.GameItem
	err := s.DB.Where("id IN ? AND game_id = ? AND is_active = ?", itemIDs, draw.GameID, true).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to validate items: %w", err)
	}
	itemByID := make(map[string]models.GameItem, len(items))
	for _, item := range items {
		itemByID[item.ID] = item
	}
	for _, d := range input.Details {
		if _, ok := itemByID[d.GameItemID]; !ok {
			return nil, fmt.Errorf("item %s is not a valid selection for this game", d.GameItemID)
		}
	}

	ticket := &models.Ticket{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		DrawID:      input.DrawID,
		TotalAmount: total,
		Status:      models.TicketStatusActive,
		Source:      models.TicketSourceWeb,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Guarded decrement: succeeds only if the balance still covers the
		// wager at write time.
		result := tx.Model(&models.User{}).
			Where("id = ? AND is_active = ? AND balance >= ?", input.UserID, true, total).
			Update("balance", gorm.Expr("balance - ?", total))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient balance")
		}

		if err := tx.Create(ticket).Error; err != nil {
			return err
		}

		for _, d := range input.Details {
			item := itemByID[d.GameItemID]
			detail := models.TicketDetail{
				ID:         uuid.NewString(),
				TicketID:   ticket.ID,
				GameItemID: d.GameItemID,
				Amount:     d.Amount,
				Multiplier: item.Multiplier,
				Status:     models.TicketStatusActive,
			}
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *TicketService) GetDrawTickets(c *fiber.Ctx) error {
	var tickets []models.Ticket
	err := s.DB.Preload("Details").
		Where("draw_id = ?", c.Params("id")).
		Order("created_at desc").
		Find(&tickets).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tickets"})
	}
	return c.JSON(tickets)
}

func (s *TicketService) GetUserTickets(c *fiber.Ctx) error {
	var tickets []models.Ticket
	q := s.DB.Preload("Details").Where("user_id = ?", c.Params("id"))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at desc").Limit(100).Find(&tickets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tickets"})
	}
	return c.JSON(tickets)
}
