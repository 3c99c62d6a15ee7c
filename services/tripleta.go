package services

import (
	"fmt"
	"log"
	"time"

	"lottery-publish-system/metrics"
	"lottery-publish-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TripletaOutcome is the result of evaluating one multi-draw wager against
// the executed draws in its range.
type TripletaOutcome int

const (
	TripletaPending TripletaOutcome = iota
	TripletaWon
	TripletaExpired
)

// TripletaService creates and settles tripleta wagers: three distinct items
// that must each win at least once across a fixed run of consecutive draws.
type TripletaService struct {
	DB     *gorm.DB
	Events *EventService
}

func NewTripletaService(db *gorm.DB, events *EventService) *TripletaService {
	return &TripletaService{DB: db, Events: events}
}

type createTripletaInput struct {
	UserID  string  `json:"user_id"`
	GameID  string  `json:"game_id"`
	Item1ID string  `json:"item1_id"`
	Item2ID string  `json:"item2_id"`
	Item3ID string  `json:"item3_id"`
	Amount  float64 `json:"amount"`
}

func (s *TripletaService) CreateTripleta(c *fiber.Ctx) error {
	var input createTripletaInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	bet, err := s.PlaceTripleta(input)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	s.Events.Emit("tripleta:created", fiber.Map{
		"tripletaId": bet.ID,
		"gameId":     bet.GameID,
		"amount":     bet.Amount,
	})
	return c.Status(fiber.StatusCreated).JSON(bet)
}

func (s *TripletaService) PlaceTripleta(input createTripletaInput) (*models.TripleBet, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if input.Item1ID == input.Item2ID || input.Item1ID == input.Item3ID || input.Item2ID == input.Item3ID {
		return nil, fmt.Errorf("the three items must be distinct")
	}

	var game models.Game
	if err := s.DB.First(&game, "id = ? AND is_active = ?", input.GameID, true).Error; err != nil {
		return nil, fmt.Errorf("game not found or inactive")
	}
	if !game.TripletaEnabled {
		return nil, fmt.Errorf("tripleta is not enabled for this game")
	}

	var itemCount int64
	err := s.DB.Model(&models.GameItem{}).
		Where("id IN ? AND game_id = ? AND is_active = ?",
			[]string{input.Item1ID, input.Item2ID, input.Item3ID}, input.GameID, true).
		Count(&itemCount).Error
	if err != nil {
		return nil, err
	}
	if itemCount != 3 {
		return nil, fmt.Errorf("one or more selected items are not valid")
	}

	// The wager matures over the next N scheduled draws of the game.
	var nextDraws []models.Draw
	err = s.DB.Where("game_id = ? AND status = ? AND scheduled_at > ?",
		input.GameID, models.DrawStatusScheduled, time.Now()).
		Order("scheduled_at asc").
		Limit(game.TripletaDrawCount).
		Find(&nextDraws).Error
	if err != nil {
		return nil, err
	}
	if len(nextDraws) < game.TripletaDrawCount {
		return nil, fmt.Errorf("not enough scheduled draws: %d required", game.TripletaDrawCount)
	}

	last := nextDraws[len(nextDraws)-1]
	bet := &models.TripleBet{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		GameID:      input.GameID,
		Item1ID:     input.Item1ID,
		Item2ID:     input.Item2ID,
		Item3ID:     input.Item3ID,
		Amount:      input.Amount,
		Multiplier:  game.TripletaMultiplier,
		DrawCount:   game.TripletaDrawCount,
		StartDrawID: nextDraws[0].ID,
		EndDrawID:   last.ID,
		ExpiresAt:   last.ScheduledAt,
		Status:      models.TripleBetStatusActive,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND is_active = ? AND balance >= ?", input.UserID, true, input.Amount).
			Update("balance", gorm.Expr("balance - ?", input.Amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("insufficient balance")
		}
		return tx.Create(bet).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎲 Tripleta created: %s (game %s, %d draws, expires %s)",
		bet.ID, game.Slug, bet.DrawCount, bet.ExpiresAt.Format(time.RFC3339))
	return bet, nil
}

type TripletaSettlementSummary struct {
	Checked int `json:"checked"`
	Won     int `json:"won"`
	Expired int `json:"expired"`
}

// SettleForDraw evaluates every ACTIVE tripleta of the draw's game whose range
// covers the draw. Settlement is monotonic: terminal wagers are filtered out
// by the query and guarded updates, so re-running against an already-settled
// wager is a no-op. One wager's failure never blocks its siblings.
func (s *TripletaService) SettleForDraw(drawID string) (*TripletaSettlementSummary, error) {
	var draw models.Draw
	if err := s.DB.First(&draw, "id = ?", drawID).Error; err != nil {
		return nil, fmt.Errorf("draw not found: %w", err)
	}
	if draw.WinnerItemID == nil {
		return nil, fmt.Errorf("draw %s has no winner", drawID)
	}

	var bets []models.TripleBet
	err := s.DB.Where("game_id = ? AND status = ? AND expires_at >= ?",
		draw.GameID, models.TripleBetStatusActive, draw.ScheduledAt).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}

	summary := &TripletaSettlementSummary{}

	for _, bet := range bets {
		var startDraw models.Draw
		if err := s.DB.First(&startDraw, "id = ?", bet.StartDrawID).Error; err != nil {
			log.Printf("⚠️ [TRIPLETA] Start draw missing for %s: %v", bet.ID, err)
			continue
		}
		if draw.ScheduledAt.Before(startDraw.ScheduledAt) {
			continue // this draw predates the wager's range
		}
		summary.Checked++

		var executed []models.Draw
		err := s.DB.Select("id", "winner_item_id").
			Where("game_id = ? AND scheduled_at >= ? AND scheduled_at <= ? AND status IN ? AND winner_item_id IS NOT NULL",
				draw.GameID, startDraw.ScheduledAt, bet.ExpiresAt,
				[]string{models.DrawStatusDrawn, models.DrawStatusPublished}).
			Find(&executed).Error
		if err != nil {
			log.Printf("⚠️ [TRIPLETA] Failed to load executed draws for %s: %v", bet.ID, err)
			continue
		}

		winnerSet := make(map[string]bool, len(executed))
		for _, d := range executed {
			winnerSet[*d.WinnerItemID] = true
		}

		switch EvaluateTripleta(bet, winnerSet, len(executed)) {
		case TripletaWon:
			if err := s.settleWon(&bet, drawID); err != nil {
				log.Printf("⚠️ [TRIPLETA] Failed to settle %s as WON: %v", bet.ID, err)
				continue
			}
			summary.Won++
		case TripletaExpired:
			if err := s.settleExpired(&bet); err != nil {
				log.Printf("⚠️ [TRIPLETA] Failed to expire %s: %v", bet.ID, err)
				continue
			}
			summary.Expired++
		}
	}

	if summary.Won > 0 || summary.Expired > 0 {
		log.Printf("🎲 Tripleta settlement for draw %s: %d checked, %d won, %d expired",
			drawID, summary.Checked, summary.Won, summary.Expired)
	}
	return summary, nil
}

// EvaluateTripleta decides a wager's outcome from the winner-item set of the
// executed draws in its range: all three items present wins; a fully executed
// range without them expires; anything else stays pending.
func EvaluateTripleta(bet models.TripleBet, winnerSet map[string]bool, executedCount int) TripletaOutcome {
	if winnerSet[bet.Item1ID] && winnerSet[bet.Item2ID] && winnerSet[bet.Item3ID] {
		return TripletaWon
	}
	if executedCount >= bet.DrawCount {
		return TripletaExpired
	}
	return TripletaPending
}

func (s *TripletaService) settleWon(bet *models.TripleBet, winnerDrawID string) error {
	prize := bet.Amount * bet.Multiplier

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Guarded flip keeps settlement irreversible under concurrent runs.
		result := tx.Model(&models.TripleBet{}).
			Where("id = ? AND status = ?", bet.ID, models.TripleBetStatusActive).
			Updates(map[string]any{
				"status":         models.TripleBetStatusWon,
				"winner_draw_id": winnerDrawID,
				"prize":          prize,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil // already terminal
		}

		return tx.Model(&models.User{}).
			Where("id = ?", bet.UserID).
			Update("balance", gorm.Expr("balance + ?", prize)).Error
	})
	if err != nil {
		return err
	}

	metrics.TripletasSettled.WithLabelValues("won").Inc()
	s.Events.Emit("tripleta:won", fiber.Map{
		"tripletaId": bet.ID,
		"userId":     bet.UserID,
		"prize":      prize,
	})
	log.Printf("🏆 Tripleta won: %s, prize %.2f", bet.ID, prize)
	return nil
}

func (s *TripletaService) settleExpired(bet *models.TripleBet) error {
	result := s.DB.Model(&models.TripleBet{}).
		Where("id = ? AND status = ?", bet.ID, models.TripleBetStatusActive).
		Update("status", models.TripleBetStatusExpired)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		metrics.TripletasSettled.WithLabelValues("expired").Inc()
		log.Printf("⌛ Tripleta expired: %s", bet.ID)
	}
	return nil
}

func (s *TripletaService) GetUserTripletas(c *fiber.Ctx) error {
	var bets []models.TripleBet
	q := s.DB.Where("user_id = ?", c.Params("id"))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at desc").Limit(100).Find(&bets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tripletas"})
	}
	return c.JSON(bets)
}
