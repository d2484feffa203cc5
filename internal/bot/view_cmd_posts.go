package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/trendoai/internal/botkit"
	"github.com/kovalyov-valentin/trendoai/internal/botkit/markup"
	"github.com/kovalyov-valentin/trendoai/internal/model"
	"github.com/kovalyov-valentin/trendoai/internal/publisher"
)

const recentPostsLimit = 5

type ArticleLister interface {
	Recent(ctx context.Context, limit int) ([]model.Article, error)
}

func ViewCmdPosts(lister ArticleLister, siteURL string) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		articles, err := lister.Recent(ctx, recentPostsLimit)
		if err != nil {
			return err
		}

		msgText := "Hozircha maqolalar yo'q"
		if len(articles) > 0 {
			infos := lo.Map(articles, func(article model.Article, _ int) string {
				return formatArticle(article, siteURL)
			})
			msgText = fmt.Sprintf(
				"📰 Oxirgi maqolalar \\(%d\\):\n\n%s",
				len(articles),
				strings.Join(infos, "\n\n"),
			)
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, msgText)
		reply.ParseMode = tgbotapi.ModeMarkdownV2
		reply.DisableWebPagePreview = true

		_, err = bot.Send(reply)
		return err
	}
}

func formatArticle(article model.Article, siteURL string) string {
	return fmt.Sprintf(
		"📝 *%s*\n🏷 %s \\| 👁 %d\n[O'qish](%s)",
		markup.EscapeForMarkdown(article.Title),
		markup.EscapeForMarkdown(article.Category),
		article.Views,
		markup.EscapeLinkURL(publisher.PostURL(siteURL, article.ID)),
	)
}
