package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/trendoai/internal/botkit"
)

type PublishTrigger interface {
	Trigger(topic, category string) bool
}

type generateArgs struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

// ViewCmdGenerate запускает цикл публикации в фоне.
// Аргументы: пусто, просто тема или {"topic":"...","category":"..."}
func ViewCmdGenerate(trigger PublishTrigger) botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		args, err := parseGenerateArgs(update.Message.CommandArguments())
		if err != nil {
			return fmt.Errorf("parse /generate arguments: %w", err)
		}

		msgText := "⏳ Maqola yaratish boshlandi"
		if !trigger.Trigger(args.Topic, args.Category) {
			msgText = "⚠️ Maqola allaqachon yaratilmoqda, kuting"
		}

		_, err = bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, msgText))
		return err
	}
}

func parseGenerateArgs(raw string) (generateArgs, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case raw == "":
		return generateArgs{}, nil
	case strings.HasPrefix(raw, "{"):
		return botkit.ParseJSON[generateArgs](raw)
	default:
		return generateArgs{Topic: raw}, nil
	}
}
