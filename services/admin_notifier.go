package services

import (
	"fmt"
	"log"
	"time"

	"lottery-publish-system/models"
	"lottery-publish-system/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

// AdminNotifierService pushes operational summaries to admin users over a
// dedicated Telegram bot: the pre-selected number at close time and the
// financial summary at execution. Delivery is best-effort and never blocks
// the lifecycle.
type AdminNotifierService struct {
	DB    *gorm.DB
	Stats *DrawStatsService
	bot   *tgbotapi.BotAPI
}

// NewAdminNotifierService returns a nil-bot notifier when token is empty;
// every notify call then degrades to a log line.
func NewAdminNotifierService(db *gorm.DB, stats *DrawStatsService, token string) *AdminNotifierService {
	s := &AdminNotifierService{DB: db, Stats: stats}
	if token == "" {
		log.Println("⚠️ Admin notifier: no bot token configured, notifications disabled")
		return s
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("⚠️ Admin notifier: bot init failed: %v", err)
		return s
	}
	s.bot = bot
	log.Printf("🤖 Admin notifier connected as @%s", bot.Self.UserName)
	return s
}

// NotifyPrewinnerSelected tells admins which number was locked in at close.
func (s *AdminNotifierService) NotifyPrewinnerSelected(draw *models.Draw, item *models.GameItem, method string) error {
	gameName := draw.GameID
	if draw.Game != nil {
		gameName = draw.Game.Name
	}

	methodLabel := "aleatoria"
	if method == "admin" {
		methodLabel = "manual"
	}

	text := fmt.Sprintf(
		"🔒 <b>Sorteo cerrado</b>\n\n"+
			"🎰 %s\n"+
			"⏰ %s\n"+
			"🎯 Preseleccionado (%s): <b>%s - %s</b>",
		gameName,
		draw.ScheduledAt.In(utils.DrawLocation()).Format("02/01/2006 15:04"),
		methodLabel,
		item.Number, item.Name,
	)
	return s.broadcast(text)
}

// NotifyDrawResult sends the result plus day/week/month financials.
func (s *AdminNotifierService) NotifyDrawResult(draw *models.Draw, fin DrawFinancials) error {
	gameName := draw.GameID
	if draw.Game != nil {
		gameName = draw.Game.Name
	}
	winner := "N/A"
	if draw.WinnerItem != nil {
		winner = fmt.Sprintf("%s - %s", draw.WinnerItem.Number, draw.WinnerItem.Name)
	}

	day, week, month := s.Stats.PeriodStats(draw.GameID, time.Now())

	text := fmt.Sprintf(
		"🎉 <b>Sorteo ejecutado</b>\n\n"+
			"🎰 %s\n"+
			"⏰ %s\n"+
			"🏆 Ganador: <b>%s</b>\n\n"+
			"💵 Ventas: %.2f\n"+
			"💸 Premios: %.2f\n"+
			"📊 Ganancia: <b>%.2f</b>\n\n"+
			"📅 Hoy: %.2f | Semana: %.2f | Mes: %.2f",
		gameName,
		draw.ScheduledAt.In(utils.DrawLocation()).Format("02/01/2006 15:04"),
		winner,
		fin.TotalSales, fin.TotalPayout, fin.Profit,
		day.Profit, week.Profit, month.Profit,
	)
	return s.broadcast(text)
}

// broadcast delivers the message to every admin with a linked Telegram chat.
// Partial failure is logged per recipient; the first error is returned so
// callers can log it once.
func (s *AdminNotifierService) broadcast(text string) error {
	if s.bot == nil {
		log.Printf("📵 Admin notification skipped (no bot): %s", firstLine(text))
		return nil
	}

	var admins []models.User
	err := s.DB.Where("role = ? AND is_active = ? AND telegram_chat_id IS NOT NULL",
		models.UserRoleAdmin, true).
		Find(&admins).Error
	if err != nil {
		return fmt.Errorf("failed to load admins: %w", err)
	}
	if len(admins) == 0 {
		return nil
	}

	var firstErr error
	for _, admin := range admins {
		msg := tgbotapi.NewMessage(*admin.TelegramChatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := s.bot.Send(msg); err != nil {
			log.Printf("⚠️ Admin notification to %s failed: %v", admin.Username, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}
