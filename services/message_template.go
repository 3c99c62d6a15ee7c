package services

import (
	"fmt"
	"unicode"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	"github.com/cbroglie/mustache"
)

// Default template used when a channel has none configured.
const defaultDrawTemplate = "🎰 *{{gameName}}*\n\n" +
	"⏰ Hora: {{time12}}\n" +
	"🎯 Resultado: *{{winnerNumberPadded}}*\n" +
	"🏆 {{winnerName}}\n\n" +
	"✨ ¡Buena suerte en el próximo sorteo!"

var spanishDays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// MessageTemplateService renders channel message templates (Mustache) from
// draw data. Rendering is a pure pass-through substitution; unknown variables
// resolve to empty strings.
type MessageTemplateService struct{}

func NewMessageTemplateService() *MessageTemplateService {
	return &MessageTemplateService{}
}

func (s *MessageTemplateService) RenderDrawMessage(template string, draw *models.Draw) (string, error) {
	if template == "" {
		template = defaultDrawTemplate
	}
	return mustache.Render(template, s.PrepareDrawData(draw))
}

// PrepareDrawData flattens a draw into the variables available to templates:
// gameName, gameSlug, date, dateShort, dateLong, dayOfWeek, time, time12,
// hour, minute, winnerNumber, winnerNumberPadded, winnerName, imageUrl,
// hasImage, status.
func (s *MessageTemplateService) PrepareDrawData(draw *models.Draw) map[string]any {
	loc := utils.DrawLocation()
	at := draw.ScheduledAt.In(loc)

	gameName := "Sorteo"
	gameType := ""
	gameSlug := ""
	if draw.Game != nil {
		gameName = draw.Game.Name
		gameType = draw.Game.Type
		gameSlug = draw.Game.Slug
	}

	winnerNumber := "N/A"
	winnerName := "N/A"
	if draw.WinnerItem != nil {
		winnerNumber = draw.WinnerItem.Number
		winnerName = draw.WinnerItem.Name
	}

	winnerNumberPadded := winnerNumber
	if draw.WinnerItem != nil {
		switch gameType {
		case models.GameTypeAnimalitos:
			winnerNumberPadded = padNumber(winnerNumber, 2)
		case models.GameTypeTriple:
			winnerNumberPadded = padNumber(winnerNumber, 3)
		}
	}

	dayName := spanishDays[int(at.Weekday())]
	monthName := spanishMonths[int(at.Month())-1]

	hour12 := at.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := "AM"
	if at.Hour() >= 12 {
		ampm = "PM"
	}

	imageURL := ""
	if draw.ImageURL != nil {
		imageURL = *draw.ImageURL
	}

	return map[string]any{
		"gameName": gameName,
		"gameSlug": gameSlug,
		"gameType": gameType,

		"drawId": draw.ID,
		"status": draw.Status,

		"date":           fmt.Sprintf("%d de %s de %d", at.Day(), monthName, at.Year()),
		"dateShort":      at.Format("02/01/2006"),
		"dateLong":       fmt.Sprintf("%s, %d de %s de %d", capitalize(dayName), at.Day(), monthName, at.Year()),
		"dayOfWeek":      dayName,
		"dayOfWeekShort": string([]rune(dayName)[:3]),

		"time":   at.Format("15:04"),
		"time12": fmt.Sprintf("%02d:%02d %s", hour12, at.Minute(), ampm),
		"hour":   at.Format("15"),
		"minute": at.Format("04"),

		"winnerNumber":       winnerNumber,
		"winnerNumberPadded": winnerNumberPadded,
		"winnerName":         winnerName,

		"imageUrl": imageURL,
		"hasImage": imageURL != "",
	}
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func padNumber(n string, width int) string {
	for len(n) < width {
		n = "0" + n
	}
	return n
}
