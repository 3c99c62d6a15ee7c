package services

import (
	"fmt"
	"log"

	"lottery-publish-system/models"

	"gorm.io/gorm"
)

// PrizeProcessorService settles single-draw wagers once a draw has a winner:
// details flip ACTIVE → WON/LOST, ticket aggregates are recomputed, and
// winnings are credited inside the same transaction as the status change.
type PrizeProcessorService struct {
	DB *gorm.DB
}

func NewPrizeProcessorService(db *gorm.DB) *PrizeProcessorService {
	return &PrizeProcessorService{DB: db}
}

type PrizeRunSummary struct {
	DetailsProcessed int     `json:"details_processed"`
	WinningDetails   int     `json:"winning_details"`
	TotalAwarded     float64 `json:"total_awarded"`
}

func (s *PrizeProcessorService) ProcessPrizesForDraw(drawID string) (*PrizeRunSummary, error) {
	summary := &PrizeRunSummary{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var draw models.Draw
		if err := tx.First(&draw, "id = ?", drawID).Error; err != nil {
			return fmt.Errorf("draw not found: %w", err)
		}
		if draw.Status != models.DrawStatusDrawn && draw.Status != models.DrawStatusPublished {
			return fmt.Errorf("draw %s is %s, prizes require an executed draw", drawID, draw.Status)
		}
		if draw.WinnerItemID == nil {
			return fmt.Errorf("draw %s has no winner item", drawID)
		}

		var details []models.TicketDetail
		err := tx.Joins("JOIN tickets ON tickets.id = ticket_details.ticket_id").
			Where("tickets.draw_id = ? AND ticket_details.status = ?", drawID, models.TicketStatusActive).
			Find(&details).Error
		if err != nil {
			return fmt.Errorf("failed to load active details: %w", err)
		}

		touchedTickets := make(map[string]struct{})

		for _, detail := range details {
			isWinner := detail.GameItemID == *draw.WinnerItemID
			status := models.TicketStatusLost
			prize := 0.0
			if isWinner {
				status = models.TicketStatusWon
				prize = detail.Amount * detail.Multiplier
			}

			err := tx.Model(&models.TicketDetail{}).
				Where("id = ?", detail.ID).
				Updates(map[string]any{"status": status, "prize": prize}).Error
			if err != nil {
				return err
			}

			summary.DetailsProcessed++
			if isWinner {
				summary.WinningDetails++
				summary.TotalAwarded += prize
			}
			touchedTickets[detail.TicketID] = struct{}{}
		}

		for ticketID := range touchedTickets {
			if err := s.recomputeTicket(tx, ticketID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💰 Prizes processed for draw %s: %d details, %d winners, %.2f awarded",
		drawID, summary.DetailsProcessed, summary.WinningDetails, summary.TotalAwarded)
	return summary, nil
}

// recomputeTicket derives the ticket aggregate from its details and credits
// newly won amounts to the owner's balance. A ticket stays ACTIVE while any
// detail still is; WON beats LOST.
func (s *PrizeProcessorService) recomputeTicket(tx *gorm.DB, ticketID string) error {
	var ticket models.Ticket
	if err := tx.First(&ticket, "id = ?", ticketID).Error; err != nil {
		return err
	}

	var details []models.TicketDetail
	if err := tx.Where("ticket_id = ?", ticketID).Find(&details).Error; err != nil {
		return err
	}

	totalPrize := 0.0
	hasWon := false
	hasActive := false
	for _, d := range details {
		totalPrize += d.Prize
		switch d.Status {
		case models.TicketStatusWon:
			hasWon = true
		case models.TicketStatusActive:
			hasActive = true
		}
	}

	status := models.TicketStatusLost
	if hasWon {
		status = models.TicketStatusWon
	} else if hasActive {
		status = models.TicketStatusActive
	}

	newlyAwarded := totalPrize - ticket.TotalPrize

	err := tx.Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Updates(map[string]any{"status": status, "total_prize": totalPrize}).Error
	if err != nil {
		return err
	}

	// External tickets have no local account to credit.
	if newlyAwarded > 0 && ticket.UserID != "" {
		err := tx.Model(&models.User{}).
			Where("id = ?", ticket.UserID).
			Update("balance", gorm.Expr("balance + ?", newlyAwarded)).Error
		if err != nil {
			return fmt.Errorf("failed to credit prize for ticket %s: %w", ticketID, err)
		}
	}

	return nil
}
