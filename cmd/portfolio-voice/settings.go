package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	settingspostgres "github.com/vsurfcode/portfolio-voice/core/settings/postgres"
	"github.com/vsurfcode/portfolio-voice/internal/config"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the assistant's voice settings",
	}

	cmd.AddCommand(settingsShowCmd())
	cmd.AddCommand(settingsSetCmd())

	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current voice settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var c components
			defer c.close()

			store, err := c.settingsStore(ctx, cfg)
			if err != nil {
				return err
			}

			return showSettings(ctx, cmd.OutOrStdout(), store)
		},
	}
}

func showSettings(ctx context.Context, out io.Writer, store orchestration.VoiceSettingsStore) error {
	current, err := store.VoiceSettings(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "voice:   %s\n", current.Voice)
	fmt.Fprintf(out, "use_tts: %t\n", current.UseHighQualityTTS)
	if current.Voice.IsRealtimeOnly() {
		fmt.Fprintf(out, "note:    %s is realtime-only, assistant turns use native audio\n", current.Voice)
	}
	return nil
}

// settingsWriter is a settings store that can also save.
type settingsWriter interface {
	orchestration.VoiceSettingsStore
	Save(ctx context.Context, voiceSettings settings.VoiceSettings) error
}

func settingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the stored voice settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var c components
			defer c.close()

			return setSettings(cmd, cfg.Settings.AdminPassword, func(ctx context.Context) (settingsWriter, error) {
				pool, err := c.openDatabase(ctx, cfg)
				if err != nil {
					return nil, err
				}
				return settingspostgres.NewStore(pool), nil
			})
		},
	}

	cmd.Flags().String("voice", "", "Voice name (alloy, echo, fable, onyx, nova, shimmer, marin, cedar)")
	cmd.Flags().Bool("tts", true, "Speak assistant turns through the text-to-speech endpoint")
	cmd.Flags().StringP("password", "p", "", "Admin password")

	return cmd
}

// setSettings checks the admin password before opening the store, then merges
// only the flags that were given into the stored settings.
func setSettings(cmd *cobra.Command, adminPassword string, open func(context.Context) (settingsWriter, error)) error {
	ctx := cmd.Context()

	password, _ := cmd.Flags().GetString("password")
	if err := settings.CheckPassword(adminPassword, password); err != nil {
		return err
	}

	store, err := open(ctx)
	if err != nil {
		return err
	}

	updated, err := store.VoiceSettings(ctx)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("voice") {
		name, _ := cmd.Flags().GetString("voice")
		voice, err := settings.ParseVoice(name)
		if err != nil {
			return err
		}
		updated.Voice = voice
	}
	if cmd.Flags().Changed("tts") {
		updated.UseHighQualityTTS, _ = cmd.Flags().GetBool("tts")
	}

	if err := store.Save(ctx, updated); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved voice %s (use_tts=%t)\n", updated.Voice, updated.UseHighQualityTTS)
	return nil
}
