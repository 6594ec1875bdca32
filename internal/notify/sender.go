package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// MessageSender delivers notification messages and documents to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error
}

// TelegramSender sends messages through the Telegram Bot API. All sends go
// through a shared rate limiter to stay under Telegram's per-bot limits.
type TelegramSender struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewTelegramSender authorizes the bot and configures the send rate.
func NewTelegramSender(token string, messagesPerSecond float64, logger *zerolog.Logger) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	if messagesPerSecond <= 0 {
		messagesPerSecond = 25
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram sender authorized")

	return &TelegramSender{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), 1),
		logger:  logger,
	}, nil
}

func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

func (s *TelegramSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := s.bot.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", chatID, err)
	}
	return nil
}
