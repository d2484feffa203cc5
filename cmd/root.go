package main

import (
	"github.com/spf13/cobra"

	"github.com/kovalyov-valentin/trendoai/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trendoai",
	Short: "TrendoAI: AI blog posts on schedule for the site and Telegram channel",
	Long: `trendoai generates SEO articles in Uzbek with a generative model,
stores them and posts announcements to the Telegram channel.

Example usage:
  trendoai serve                                   # scheduler, http api and bot
  trendoai publish --topic "Go 1.24"               # one publish cycle right now
  trendoai portfolio "Telegram Bot" "Dasturlash"   # portfolio card as JSON
  trendoai migrate                                 # create tables`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "hcl config file (default is ./config.hcl)")
}

func loadConfig() config.Config {
	if cfgFile == "" {
		return config.Get()
	}
	return config.Load(".env", cfgFile)
}
