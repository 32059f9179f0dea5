package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func init() {
	godotenv.Load()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "portfolio-voice",
		Short:        "Talk to a portfolio's voice assistant from the terminal",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(contextCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
