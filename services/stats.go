package services

import (
	"log"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DrawFinancials is the sales/payout/profit triple for one draw.
type DrawFinancials struct {
	DrawID      string  `json:"draw_id"`
	TotalSales  float64 `json:"total_sales"`
	WinnerSales float64 `json:"winner_sales"`
	TotalPayout float64 `json:"total_payout"`
	Profit      float64 `json:"profit"`
	TicketCount int     `json:"ticket_count"`
	WinnerCount int     `json:"winner_count"`
}

// PeriodFinancials is the same triple over a rolling window.
type PeriodFinancials struct {
	Sales   float64 `json:"sales"`
	Payouts float64 `json:"payouts"`
	Profit  float64 `json:"profit"`
}

// DrawStatsService computes financial exposure for draws and rolling
// day/week/month windows. Computation never fails loudly: on error it logs
// and degrades to zero-valued stats so notification paths keep flowing.
type DrawStatsService struct {
	DB *gorm.DB
}

func NewDrawStatsService(db *gorm.DB) *DrawStatsService {
	return &DrawStatsService{DB: db}
}

// ComputeDrawStats aggregates the draw's wagers and upserts the persisted
// draw_stats row.
func (s *DrawStatsService) ComputeDrawStats(drawID string) DrawFinancials {
	zero := DrawFinancials{DrawID: drawID}

	var draw models.Draw
	if err := s.DB.Preload("WinnerItem").First(&draw, "id = ?", drawID).Error; err != nil {
		log.Printf("⚠️ [STATS] Draw %s not found: %v", drawID, err)
		return zero
	}

	var tickets []models.Ticket
	if err := s.DB.Preload("Details").Where("draw_id = ?", drawID).Find(&tickets).Error; err != nil {
		log.Printf("⚠️ [STATS] Failed to load tickets for draw %s: %v", drawID, err)
		return zero
	}

	winnerID := ""
	multiplier := 0.0
	if draw.WinnerItem != nil {
		winnerID = draw.WinnerItem.ID
		multiplier = draw.WinnerItem.Multiplier
	}

	fin := SummarizeDraw(drawID, tickets, winnerID, multiplier)

	stats := models.DrawStats{
		ID:           uuid.NewString(),
		DrawID:       drawID,
		TotalSales:   fin.TotalSales,
		WinnerSales:  fin.WinnerSales,
		TotalPayout:  fin.TotalPayout,
		Profit:       fin.Profit,
		TicketCount:  fin.TicketCount,
		WinnerCount:  fin.WinnerCount,
		CalculatedAt: time.Now(),
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "draw_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "winner_sales", "total_payout", "profit",
			"ticket_count", "winner_count", "calculated_at",
		}),
	}).Create(&stats).Error
	if err != nil {
		log.Printf("⚠️ [STATS] Failed to persist stats for draw %s: %v", drawID, err)
	}

	return fin
}

// SummarizeDraw is the pure aggregation: totalSales is the sum of all wager
// amounts, winnerSales the amounts on the winning item, totalPayout
// winnerSales × the winner's multiplier, profit the difference.
func SummarizeDraw(drawID string, tickets []models.Ticket, winnerItemID string, winnerMultiplier float64) DrawFinancials {
	fin := DrawFinancials{DrawID: drawID}

	for _, ticket := range tickets {
		fin.TicketCount++
		won := false
		for _, detail := range ticket.Details {
			fin.TotalSales += detail.Amount
			if winnerItemID != "" && detail.GameItemID == winnerItemID {
				fin.WinnerSales += detail.Amount
				won = true
			}
		}
		if won {
			fin.WinnerCount++
		}
	}

	fin.TotalPayout = fin.WinnerSales * winnerMultiplier
	fin.Profit = fin.TotalSales - fin.TotalPayout
	return fin
}

// PeriodStats returns day / Mon-start week / calendar month accumulations for
// a game, over draws that reached DRAWN or PUBLISHED inside each window.
func (s *DrawStatsService) PeriodStats(gameID string, ref time.Time) (day, week, month PeriodFinancials) {
	loc := utils.DrawLocation()
	end := ref

	day = s.rangeStats(gameID, utils.StartOfDay(ref, loc), end)
	week = s.rangeStats(gameID, utils.StartOfWeek(ref, loc), end)
	month = s.rangeStats(gameID, utils.StartOfMonth(ref, loc), end)
	return day, week, month
}

func (s *DrawStatsService) rangeStats(gameID string, from, to time.Time) PeriodFinancials {
	type row struct {
		Sales   float64
		Payouts float64
	}
	var r row
	err := s.DB.Model(&models.DrawStats{}).
		Select("COALESCE(SUM(draw_stats.total_sales),0) AS sales, COALESCE(SUM(draw_stats.total_payout),0) AS payouts").
		Joins("JOIN draws ON draws.id = draw_stats.draw_id").
		Where("draws.game_id = ? AND draws.status IN ? AND draws.scheduled_at >= ? AND draws.scheduled_at <= ?",
			gameID, []string{models.DrawStatusDrawn, models.DrawStatusPublished}, from, to).
		Scan(&r).Error
	if err != nil {
		log.Printf("⚠️ [STATS] Range query failed for game %s: %v", gameID, err)
		return PeriodFinancials{}
	}
	return PeriodFinancials{
		Sales:   r.Sales,
		Payouts: r.Payouts,
		Profit:  r.Sales - r.Payouts,
	}
}

// GetDrawStats exposes one draw's stored stats to the admin API.
func (s *DrawStatsService) GetDrawStats(c *fiber.Ctx) error {
	var stats models.DrawStats
	if err := s.DB.First(&stats, "draw_id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "stats not computed for draw"})
	}
	return c.JSON(stats)
}
