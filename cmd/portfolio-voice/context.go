package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"github.com/vsurfcode/portfolio-voice/internal/config"
)

func contextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Print the system prompt built from the portfolio facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var c components
			defer c.close()

			provider, err := c.portfolioProvider(ctx, cfg)
			if err != nil {
				return err
			}

			return printContext(ctx, cmd.OutOrStdout(), provider, cfg.Assistant.Owner)
		},
	}
}

// printContext writes the system prompt for the given facts. A nil provider
// prints the prompt without a portfolio snapshot.
func printContext(ctx context.Context, out io.Writer, provider orchestration.PortfolioProvider, owner string) error {
	var facts portfolio.Facts
	if provider != nil {
		var err error
		if facts, err = provider.Facts(ctx); err != nil {
			return err
		}
	}

	if owner == "" {
		owner = facts.OwnerName("the site owner")
	}

	snapshot, err := portfolio.Snapshot(facts)
	if err != nil {
		return err
	}

	fmt.Fprint(out, portfolio.Instructions(owner, snapshot))
	return nil
}
