package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lottery-publish-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExternalTicketImporter pulls externally-originated sales for a draw from
// the provider API right before closing. Import is best-effort: the closer
// logs failures and proceeds.
type ExternalTicketImporter struct {
	DB           *gorm.DB
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewExternalTicketImporter(db *gorm.DB, baseURL, serviceToken string) *ExternalTicketImporter {
	return &ExternalTicketImporter{
		DB:           db,
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// externalTicket matches the JSON shape of the provider sales endpoint.
type externalTicket struct {
	TicketID string  `json:"ticket_id"`
	Amount   float64 `json:"amount"`
	Details  []struct {
		ItemNumber string  `json:"item_number"`
		Amount     float64 `json:"amount"`
	} `json:"details"`
}

type externalSalesResponse struct {
	Tickets []externalTicket `json:"tickets"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (imp *ExternalTicketImporter) ImportTickets(ctx context.Context, draw *models.Draw) (*ImportResult, error) {
	if imp.baseURL == "" {
		return &ImportResult{}, nil // integration not configured; a no-op, not an error
	}

	url := fmt.Sprintf("%s/api/v1/draws/%s/tickets", imp.baseURL, draw.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+imp.serviceToken)

	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sales API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("sales API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out externalSalesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid sales API response: %w", err)
	}

	// Item lookup by number for this game.
	var items []models.GameItem
	if err := imp.DB.Where("game_id = ?", draw.GameID).Find(&items).Error; err != nil {
		return nil, err
	}
	itemByNumber := make(map[string]models.GameItem, len(items))
	for _, item := range items {
		itemByNumber[item.Number] = item
	}

	result := &ImportResult{}

	for _, ext := range out.Tickets {
		externalID := ext.TicketID

		var existing int64
		imp.DB.Model(&models.Ticket{}).
			Where("draw_id = ? AND external_id = ?", draw.ID, externalID).
			Count(&existing)
		if existing > 0 {
			result.Skipped++
			continue
		}

		ticket := models.Ticket{
			ID:          uuid.NewString(),
			DrawID:      draw.ID,
			TotalAmount: ext.Amount,
			Status:      models.TicketStatusActive,
			Source:      models.TicketSourceExternalAPI,
			ExternalID:  &externalID,
		}

		err := imp.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ticket).Error; err != nil {
				return err
			}
			for _, d := range ext.Details {
				item, ok := itemByNumber[d.ItemNumber]
				if !ok {
					continue // unknown number; provider catalog drift
				}
				detail := models.TicketDetail{
					ID:         uuid.NewString(),
					TicketID:   ticket.ID,
					GameItemID: item.ID,
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
			return result, fmt.Errorf("failed to store external ticket %s: %w", externalID, err)
		}
		result.Imported++
	}

	return result, nil
}
