package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
	"github.com/vsurfcode/portfolio-voice/core/audio/miniaudio"
	"github.com/vsurfcode/portfolio-voice/core/audio/portaudio"
	credentialsendpoint "github.com/vsurfcode/portfolio-voice/core/credentials/endpoint"
	credentialsopenai "github.com/vsurfcode/portfolio-voice/core/credentials/openai"
	portfoliofile "github.com/vsurfcode/portfolio-voice/core/portfolio/file"
	portfoliopostgres "github.com/vsurfcode/portfolio-voice/core/portfolio/postgres"
	realtimeopenai "github.com/vsurfcode/portfolio-voice/core/realtime/openai"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	settingspostgres "github.com/vsurfcode/portfolio-voice/core/settings/postgres"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech/deepgram"
	ttsopenai "github.com/vsurfcode/portfolio-voice/core/texttospeech/openai"
	"github.com/vsurfcode/portfolio-voice/internal/config"
)

const portaudioBufferSize = 1024

var errNoDatabase = errors.New("DATABASE_URL is not set")

// components holds everything built from the configuration. close releases
// whatever was opened.
type components struct {
	db      *pgxpool.Pool
	closers []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func (c *components) openDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if c.db != nil {
		return c.db, nil
	}
	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.db = pool
	c.closers = append(c.closers, pool.Close)
	return pool, nil
}

func (c *components) portfolioProvider(ctx context.Context, cfg *config.Config) (orchestration.PortfolioProvider, error) {
	if cfg.Portfolio.File != "" {
		return portfoliofile.NewProvider(cfg.Portfolio.File), nil
	}

	pool, err := c.openDatabase(ctx, cfg)
	if errors.Is(err, errNoDatabase) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return portfoliopostgres.NewProvider(pool), nil
}

func (c *components) settingsStore(ctx context.Context, cfg *config.Config) (orchestration.VoiceSettingsStore, error) {
	pool, err := c.openDatabase(ctx, cfg)
	if err == nil {
		return settingspostgres.NewStore(pool), nil
	} else if !errors.Is(err, errNoDatabase) {
		return nil, err
	}

	voice, err := settings.ParseVoice(cfg.Settings.Voice)
	if err != nil {
		return nil, err
	}
	return settings.Static{Voice: voice, UseHighQualityTTS: cfg.Settings.UseTTS}, nil
}

func credentialProvider(cfg *config.Config) orchestration.CredentialProvider {
	if cfg.Credentials.Endpoint != "" {
		return credentialsendpoint.NewClient(cfg.Credentials.Endpoint)
	}

	var opts []credentialsopenai.ClientOption
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, credentialsopenai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	opts = append(opts, credentialsopenai.WithModel(cfg.OpenAI.RealtimeModel))
	return credentialsopenai.NewClient(cfg.OpenAI.APIKey, opts...)
}

func textToSpeech(cfg *config.Config) (orchestration.TextToSpeech, error) {
	switch cfg.Speech.Provider {
	case config.SpeechProviderDeepgram:
		return deepgram.NewClient(cfg.Deepgram.APIKey)
	case config.SpeechProviderNone:
		return nil, nil
	}

	var opts []ttsopenai.ClientOption
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, ttsopenai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return ttsopenai.NewClient(cfg.OpenAI.APIKey, opts...), nil
}

// audioDevices opens the configured backend and returns the session output
// option together with the transport's microphone input.
func (c *components) audioDevices(cfg *config.Config) (orchestration.SessionOption, realtimeopenai.AudioInput, error) {
	switch cfg.Audio.Backend {
	case config.AudioBackendPortaudio:
		client, err := portaudio.NewClient(portaudioBufferSize)
		if err != nil {
			return nil, nil, err
		}
		c.closers = append(c.closers, client.Close)
		return orchestration.WithAudioOutputV0(client), client, nil

	case config.AudioBackendMiniaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, err
		}
		c.closers = append(c.closers, client.Close)
		return orchestration.WithAudioOutputV1(client), client, nil
	}

	return nil, nil, nil
}
