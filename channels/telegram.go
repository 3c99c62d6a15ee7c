package channels

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"lottery-publish-system/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider publishes draw results to Telegram chats and channels.
// One bot client is kept per instance and reused across sends.
type TelegramProvider struct {
	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewTelegramProvider() *TelegramProvider {
	return &TelegramProvider{bots: make(map[string]*tgbotapi.BotAPI)}
}

func (p *TelegramProvider) Type() string {
	return models.ChannelTypeTelegram
}

func (p *TelegramProvider) bot(instance models.ChannelInstance) (*tgbotapi.BotAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bot, ok := p.bots[instance.InstanceID]; ok {
		return bot, nil
	}

	bot, err := tgbotapi.NewBotAPI(instance.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("telegram instance %s: %w", instance.InstanceID, err)
	}
	log.Printf("✅ Telegram bot ready for instance %s (@%s)", instance.InstanceID, bot.Self.UserName)
	p.bots[instance.InstanceID] = bot
	return bot, nil
}

func (p *TelegramProvider) Send(ctx context.Context, instance models.ChannelInstance, channel models.GameChannel, text, imageURL string) (*SendResult, error) {
	bot, err := p.bot(instance)
	if err != nil {
		return nil, err
	}

	chatID, err := strconv.ParseInt(channel.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q", channel.ChatID)
	}

	html := FormatTelegramHTML(text)

	var sent tgbotapi.Message
	if imageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
		photo.Caption = html
		photo.ParseMode = tgbotapi.ModeHTML
		sent, err = bot.Send(photo)
	} else {
		msg := tgbotapi.NewMessage(chatID, html)
		msg.ParseMode = tgbotapi.ModeHTML
		sent, err = bot.Send(msg)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram send to %s: %w", channel.ChatID, err)
	}

	return &SendResult{
		ExternalID: strconv.Itoa(sent.MessageID),
		SentCount:  1,
	}, nil
}

// FormatTelegramHTML converts the lightweight markdown used in channel
// templates (*bold*, _italic_, `code`) into Telegram HTML.
func FormatTelegramHTML(message string) string {
	replacements := []struct {
		marker string
		open   string
		close  string
	}{
		{"**", "<b>", "</b>"},
		{"*", "<b>", "</b>"},
		{"_", "<i>", "</i>"},
		{"`", "<code>", "</code>"},
	}

	out := message
	for _, r := range replacements {
		for {
			start := strings.Index(out, r.marker)
			if start < 0 {
				break
			}
			rest := out[start+len(r.marker):]
			end := strings.Index(rest, r.marker)
			if end < 0 {
				break
			}
			out = out[:start] + r.open + rest[:end] + r.close + rest[end+len(r.marker):]
		}
	}
	return out
}
