// Package telegram delivers notifications to a user's Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender posts HTML messages through a bot account.
type Sender struct {
	api *tgbotapi.BotAPI
}

func NewSender(token string) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log.Printf("[Telegram] Authorized as @%s", api.Self.UserName)
	return &Sender{api: api}, nil
}

// Send writes a bold title followed by the body. The bot API call is not
// cancellable, so ctx is only checked before sending.
func (s *Sender) Send(ctx context.Context, chatID int64, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, FormatMessage(title, body))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatMessage renders an HTML-safe message.
func FormatMessage(title, body string) string {
	text := "<b>" + html.EscapeString(title) + "</b>"
	if body != "" {
		text += "\n" + html.EscapeString(body)
	}
	return text
}
