package main

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/kovalyov-valentin/trendoai/internal/bot"
	"github.com/kovalyov-valentin/trendoai/internal/bot/middleware"
	"github.com/kovalyov-valentin/trendoai/internal/botkit"
	"github.com/kovalyov-valentin/trendoai/internal/publisher"
	"github.com/kovalyov-valentin/trendoai/internal/scheduler"
	"github.com/kovalyov-valentin/trendoai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduler, topic feeds, http api and telegram bot",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	botAPI := newBotAPI(cfg)

	hourly, err := scheduler.NewHourly(cfg.ScheduleFromHour, cfg.ScheduleToHour, cfg.Timezone)
	if err != nil {
		return err
	}

	var (
		runner = publisher.NewRunner(ctx, a.newPublisher(botAPI))
		srv    = server.New(runner, hourly, a.ladder, a.articles, cfg.CronSecret, a.categories, cfg.SiteURL)
	)

	// Воркер лент с темами
	go worker(ctx, "topic pool", a.pool.Start)

	// Воркер расписания. Ручной запуск во время цикла присоединяется к нему
	go worker(ctx, "scheduler", func(ctx context.Context) error {
		return hourly.Start(ctx, func(ctx context.Context) {
			runner.Run(ctx, "", "")
		})
	})

	go worker(ctx, "http server", func(ctx context.Context) error {
		log.Printf("[INFO] http server listening on %s", cfg.HTTPAddr)
		return srv.Start(ctx, cfg.HTTPAddr)
	})

	// Без бота работают только расписание и http
	if botAPI == nil {
		<-ctx.Done()
		log.Println("service stopped")
		return nil
	}

	// Обернуть middleware все view, где нужно дать доступ только админу
	trendoBot := botkit.New(botAPI)
	trendoBot.RegisterCmdView("start", bot.ViewCmdStart())
	trendoBot.RegisterCmdView("posts", bot.ViewCmdPosts(a.articles, cfg.SiteURL))
	trendoBot.RegisterCmdView("ladder", bot.ViewCmdLadder(a.ladder))
	trendoBot.RegisterCmdView(
		"generate",
		middleware.AdminOnly(cfg.TelegramAdminID, bot.ViewCmdGenerate(runner)),
	)
	trendoBot.RegisterCmdView(
		"resetladder",
		middleware.AdminOnly(cfg.TelegramAdminID, bot.ViewCmdResetLadder(a.ladder)),
	)

	// Запуск бота
	if err := trendoBot.Run(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to run bot: %v", err)
			return err
		}

		log.Println("bot stopped")
	}

	return nil
}

func worker(ctx context.Context, name string, start func(ctx context.Context) error) {
	if err := start(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("[ERROR] failed to run %s: %v", name, err)
			return
		}

		log.Printf("%s stopped", name)
	}
}
