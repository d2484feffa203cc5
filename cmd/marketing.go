package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var marketingCmd = &cobra.Command{
	Use:   "marketing",
	Short: "Generate a promo post about the blog and send it to the channel",
	RunE:  runMarketing,
}

func init() {
	rootCmd.AddCommand(marketingCmd)
}

func runMarketing(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.newPublisher(newBotAPI(cfg)).MarketingPost(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "marketing post sent")
	return nil
}
