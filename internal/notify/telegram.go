package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// TelegramNotifier шлёт уведомления о бронированиях в административный чат
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID string
	logger *zap.Logger
}

func NewTelegramNotifier(token, chatID string, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

// BookingCreated уведомляет администратора о новом бронировании
func (n *TelegramNotifier) BookingCreated(ctx context.Context, userName, date, timeRange string) error {
	text := fmt.Sprintf("📅 Новая запись\n\n%s\n%s %s", userName, date, timeRange)
	return n.send(ctx, text)
}

// BookingCancelled уведомляет администратора об отмене бронирования
func (n *TelegramNotifier) BookingCancelled(ctx context.Context, userName, date, timeRange string) error {
	text := fmt.Sprintf("❌ Запись отменена\n\n%s\n%s %s", userName, date, timeRange)
	return n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
