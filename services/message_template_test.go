package services

import (
	"testing"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraw() *models.Draw {
	loc := utils.DrawLocation()
	imageURL := "https://cdn.example.com/draws/d1.png"
	return &models.Draw{
		ID:          "d1",
		Status:      models.DrawStatusDrawn,
		ScheduledAt: time.Date(2026, 8, 19, 15, 0, 0, 0, loc), // Wednesday
		ImageURL:    &imageURL,
		Game: &models.Game{
			Name: "Lotto Activo",
			Slug: "lotto-activo",
			Type: models.GameTypeAnimalitos,
		},
		WinnerItem: &models.GameItem{
			Number: "5",
			Name:   "León",
		},
	}
}

func TestPrepareDrawData(t *testing.T) {
	svc := NewMessageTemplateService()
	data := svc.PrepareDrawData(sampleDraw())

	assert.Equal(t, "Lotto Activo", data["gameName"])
	assert.Equal(t, "5", data["winnerNumber"])
	assert.Equal(t, "05", data["winnerNumberPadded"]) // two digits for animalitos
	assert.Equal(t, "León", data["winnerName"])
	assert.Equal(t, "15:00", data["time"])
	assert.Equal(t, "03:00 PM", data["time12"])
	assert.Equal(t, "miércoles", data["dayOfWeek"])
	assert.Equal(t, "mié", data["dayOfWeekShort"])
	assert.Equal(t, "19/08/2026", data["dateShort"])
	assert.Equal(t, "Miércoles, 19 de agosto de 2026", data["dateLong"])
	assert.Equal(t, true, data["hasImage"])
}

func TestPrepareDrawDataTriplePadding(t *testing.T) {
	draw := sampleDraw()
	draw.Game.Type = models.GameTypeTriple
	draw.WinnerItem = &models.GameItem{Number: "45", Name: "45"}

	data := NewMessageTemplateService().PrepareDrawData(draw)

	assert.Equal(t, "045", data["winnerNumberPadded"])
}

func TestPrepareDrawDataNoWinnerNoImage(t *testing.T) {
	draw := sampleDraw()
	draw.WinnerItem = nil
	draw.ImageURL = nil

	data := NewMessageTemplateService().PrepareDrawData(draw)

	assert.Equal(t, "N/A", data["winnerNumber"])
	assert.Equal(t, false, data["hasImage"])
	assert.Equal(t, "", data["imageUrl"])
}

func TestRenderDrawMessageCustomTemplate(t *testing.T) {
	svc := NewMessageTemplateService()

	out, err := svc.RenderDrawMessage("Resultado {{gameName}}: {{winnerNumberPadded}} {{winnerName}}", sampleDraw())
	require.NoError(t, err)

	assert.Equal(t, "Resultado Lotto Activo: 05 León", out)
}

func TestRenderDrawMessageDefaultTemplate(t *testing.T) {
	svc := NewMessageTemplateService()

	out, err := svc.RenderDrawMessage("", sampleDraw())
	require.NoError(t, err)

	assert.Contains(t, out, "Lotto Activo")
	assert.Contains(t, out, "05")
	assert.Contains(t, out, "León")
}
