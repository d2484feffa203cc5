package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/trendoai/internal/botkit"
)

const startText = "👋 *TrendoAI* botiga xush kelibsiz\\!\n\n" +
	"/posts \\- oxirgi maqolalar\n" +
	"/ladder \\- AI profillar holati\n" +
	"/generate \\- yangi maqola yaratish \\(admin\\)\n" +
	"/resetladder \\- asosiy profilga qaytish \\(admin\\)"

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		reply := tgbotapi.NewMessage(update.Message.Chat.ID, startText)
		reply.ParseMode = tgbotapi.ModeMarkdownV2

		_, err := bot.Send(reply)
		return err
	}
}
