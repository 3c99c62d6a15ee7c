package services

import (
	"testing"

	"lottery-publish-system/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeDraw(t *testing.T) {
	tickets := []models.Ticket{
		{
			ID: "t1",
			Details: []models.TicketDetail{
				{GameItemID: "item-a", Amount: 100},
			},
		},
		{
			ID: "t2",
			Details: []models.TicketDetail{
				{GameItemID: "item-b", Amount: 50},
			},
		},
	}

	fin := SummarizeDraw("d1", tickets, "item-a", 3)

	assert.Equal(t, 150.0, fin.TotalSales)
	assert.Equal(t, 100.0, fin.WinnerSales)
	assert.Equal(t, 300.0, fin.TotalPayout)
	assert.Equal(t, -150.0, fin.Profit)
	assert.Equal(t, 2, fin.TicketCount)
	assert.Equal(t, 1, fin.WinnerCount)
}

func TestSummarizeDrawNoWinner(t *testing.T) {
	tickets := []models.Ticket{
		{
			ID: "t1",
			Details: []models.TicketDetail{
				{GameItemID: "item-a", Amount: 20},
				{GameItemID: "item-b", Amount: 30},
			},
		},
	}

	// Winner item nobody wagered on: house keeps everything.
	fin := SummarizeDraw("d1", tickets, "item-c", 30)

	assert.Equal(t, 50.0, fin.TotalSales)
	assert.Zero(t, fin.WinnerSales)
	assert.Zero(t, fin.TotalPayout)
	assert.Equal(t, 50.0, fin.Profit)
	assert.Equal(t, 1, fin.TicketCount)
	assert.Zero(t, fin.WinnerCount)
}

func TestSummarizeDrawMultiItemTicketCountsOnce(t *testing.T) {
	tickets := []models.Ticket{
		{
			ID: "t1",
			Details: []models.TicketDetail{
				{GameItemID: "item-a", Amount: 10},
				{GameItemID: "item-a", Amount: 15},
				{GameItemID: "item-b", Amount: 5},
			},
		},
	}

	fin := SummarizeDraw("d1", tickets, "item-a", 2)

	assert.Equal(t, 30.0, fin.TotalSales)
	assert.Equal(t, 25.0, fin.WinnerSales)
	assert.Equal(t, 50.0, fin.TotalPayout)
	assert.Equal(t, 1, fin.WinnerCount)
}

func TestSummarizeDrawEmpty(t *testing.T) {
	fin := SummarizeDraw("d1", nil, "item-a", 3)

	assert.Zero(t, fin.TotalSales)
	assert.Zero(t, fin.TotalPayout)
	assert.Zero(t, fin.Profit)
	assert.Zero(t, fin.TicketCount)
}
