package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/trendoai/internal/botkit"
)

// AdminOnly пускает к view только пользователя с adminID. Если admin не задан, команда закрыта для всех
func AdminOnly(adminID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		if adminID != 0 && update.Message.From != nil && update.Message.From.ID == adminID {
			return next(ctx, bot, update)
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "Bu buyruq faqat admin uchun")); err != nil {
			return err
		}
		return nil
	}
}
