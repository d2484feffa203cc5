package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kovalyov-valentin/trendoai/internal/model"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio <title> <category>",
	Short: "Generate portfolio card content and print it as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
}

type portfolioOutput struct {
	model.PortfolioContent
	ImageURL string `json:"image_url"`
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	content, err := a.generator.Portfolio(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(portfolioOutput{
		PortfolioContent: content,
		ImageURL:         a.images.ResolveCategory(ctx, args[1]),
	})
}
