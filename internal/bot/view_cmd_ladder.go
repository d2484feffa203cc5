package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/trendoai/internal/ai"
	"github.com/kovalyov-valentin/trendoai/internal/botkit"
)

type LadderViewer interface {
	Current() (int, ai.Step)
	Steps() []ai.Step
}

type LadderResetter interface {
	Reset()
}

// ViewCmdLadder показывает ступени лестницы и отмечает текущую. Ключи не выводим
func ViewCmdLadder(ladder LadderViewer) botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, formatLadder(ladder)))
		return err
	}
}

func ViewCmdResetLadder(ladder LadderResetter) botkit.ViewFunc {
	return func(_ context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		ladder.Reset()

		_, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, "✅ Asosiy profilga qaytildi"))
		return err
	}
}

func formatLadder(ladder LadderViewer) string {
	pos, _ := ladder.Current()

	var sb strings.Builder
	sb.WriteString("AI profillar:\n")
	for i, step := range ladder.Steps() {
		marker := "  "
		if i == pos {
			marker = "▶ "
		}
		fmt.Fprintf(&sb, "%s%d. %s (%s)\n", marker, i+1, step.Tier, step.Profile.Model)
	}

	return strings.TrimRight(sb.String(), "\n")
}
