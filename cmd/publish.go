package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Run one publish cycle right now",
	Long: `Generate an article, save it and post it to the channel.

Examples:
  trendoai publish                                     # random topic and category
  trendoai publish --topic "Kvant kompyuterlar" --category "Sun'iy Intellekt"`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("topic", "", "article topic (default: random from pool)")
	publishCmd.Flags().String("category", "", "article category (default: random)")
}

func runPublish(cmd *cobra.Command, _ []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	category, _ := cmd.Flags().GetString("category")

	ctx := cmd.Context()
	cfg := loadConfig()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Фонового воркера лент здесь нет, подтягиваем их один раз
	a.pool.Refresh(ctx)

	if !a.newPublisher(newBotAPI(cfg)).Publish(ctx, topic, category) {
		return errors.New("publish cycle failed, see log")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "published")
	return nil
}
