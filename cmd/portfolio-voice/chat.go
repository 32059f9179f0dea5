package main

import (
	"fmt"

	"github.com/spf13/cobra"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
	realtimeopenai "github.com/vsurfcode/portfolio-voice/core/realtime/openai"
	"github.com/vsurfcode/portfolio-voice/internal/config"
	"github.com/vsurfcode/portfolio-voice/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a voice conversation with the portfolio assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var c components
			defer c.close()

			opts := []orchestration.SessionOption{
				orchestration.WithCredentials(credentialProvider(cfg)),
				orchestration.WithAssistant(cfg.Assistant.Name, cfg.Assistant.Owner),
				orchestration.WithRealtimeModel(cfg.OpenAI.RealtimeModel),
				orchestration.WithWelcomeMessage(cfg.Assistant.WelcomeMessage),
				orchestration.WithWelcomeDelay(cfg.Assistant.WelcomeDelay),
				orchestration.WithConnectTimeout(cfg.Assistant.ConnectTimeout),
				orchestration.WithSynthesisTimeout(cfg.Speech.Timeout),
			}

			provider, err := c.portfolioProvider(ctx, cfg)
			if err != nil {
				return err
			}
			if provider != nil {
				opts = append(opts, orchestration.WithPortfolio(provider))
			}

			store, err := c.settingsStore(ctx, cfg)
			if err != nil {
				return err
			}
			opts = append(opts, orchestration.WithVoiceSettings(store))

			speech, err := textToSpeech(cfg)
			if err != nil {
				return err
			}
			if speech != nil {
				opts = append(opts, orchestration.WithTextToSpeech(speech))
			}

			var transportOpts []realtimeopenai.TransportOption
			outputOpt, input, err := c.audioDevices(cfg)
			if err != nil {
				return fmt.Errorf("failed to open audio devices: %w", err)
			}
			if outputOpt != nil {
				opts = append(opts, outputOpt)
			}
			if input != nil {
				transportOpts = append(transportOpts, realtimeopenai.WithAudioInput(input))
			}
			opts = append(opts, orchestration.WithTransportFactory(realtimeopenai.NewFactory(transportOpts...)))

			bridge := &tui.Bridge{}
			opts = append(opts, bridge.SessionOptions()...)

			session := orchestration.NewSession(opts...)
			defer session.Close(ctx)

			if autoConnect, _ := cmd.Flags().GetBool("connect"); autoConnect {
				go session.Connect(ctx)
			}

			return tui.Run(ctx, session, bridge)
		},
	}

	cmd.Flags().Bool("connect", true, "Connect as soon as the interface starts")

	return cmd
}
