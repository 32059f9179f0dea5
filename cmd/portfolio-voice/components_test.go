package main

import (
	"context"
	"errors"
	"testing"

	credentialsendpoint "github.com/vsurfcode/portfolio-voice/core/credentials/endpoint"
	credentialsopenai "github.com/vsurfcode/portfolio-voice/core/credentials/openai"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech/deepgram"
	ttsopenai "github.com/vsurfcode/portfolio-voice/core/texttospeech/openai"
	"github.com/vsurfcode/portfolio-voice/internal/config"
)

func TestTextToSpeechSelection(t *testing.T) {
	testCases := []struct {
		provider string
		check    func(any) bool
	}{
		{provider: config.SpeechProviderOpenAI, check: func(v any) bool { _, ok := v.(*ttsopenai.Client); return ok }},
		{provider: config.SpeechProviderDeepgram, check: func(v any) bool { _, ok := v.(*deepgram.Client); return ok }},
		{provider: config.SpeechProviderNone, check: func(v any) bool { return v == nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.provider, func(t *testing.T) {
			cfg := &config.Config{
				Speech:   config.SpeechConfig{Provider: tc.provider},
				OpenAI:   config.OpenAIConfig{APIKey: "sk-test"},
				Deepgram: config.DeepgramConfig{APIKey: "dg-test"},
			}

			client, err := textToSpeech(cfg)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			var value any
			if client != nil {
				value = client
			}
			if !tc.check(value) {
				t.Fatalf("unexpected client %T for provider %s", client, tc.provider)
			}
		})
	}
}

func TestCredentialProviderSelection(t *testing.T) {
	endpointCfg := &config.Config{Credentials: config.CredentialsConfig{Endpoint: "http://localhost:3000/api/token"}}
	if _, ok := credentialProvider(endpointCfg).(*credentialsendpoint.Client); !ok {
		t.Fatalf("expected endpoint client when an endpoint is configured")
	}

	openAICfg := &config.Config{OpenAI: config.OpenAIConfig{APIKey: "sk-test", RealtimeModel: "gpt-realtime"}}
	if _, ok := credentialProvider(openAICfg).(*credentialsopenai.Client); !ok {
		t.Fatalf("expected OpenAI client without an endpoint")
	}
}

func TestSettingsStoreWithoutDatabase(t *testing.T) {
	var c components
	defer c.close()

	cfg := &config.Config{Settings: config.SettingsConfig{Voice: "marin", UseTTS: true}}
	store, err := c.settingsStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	current, err := store.VoiceSettings(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if current.Voice != settings.VoiceMarin || !current.UseHighQualityTTS {
		t.Fatalf("expected marin with tts, got %+v", current)
	}

	cfg.Settings.Voice = "robot"
	if _, err := c.settingsStore(context.Background(), cfg); !errors.Is(err, settings.ErrInvalidVoice) {
		t.Fatalf("expected ErrInvalidVoice, got %v", err)
	}
}

func TestPortfolioProviderWithoutSources(t *testing.T) {
	var c components
	defer c.close()

	provider, err := c.portfolioProvider(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider != nil {
		t.Fatalf("expected no provider, got %T", provider)
	}
}

func TestAudioDevicesNone(t *testing.T) {
	var c components
	defer c.close()

	option, input, err := c.audioDevices(&config.Config{Audio: config.AudioConfig{Backend: config.AudioBackendNone}})
	if err != nil || option != nil || input != nil {
		t.Fatalf("expected nothing opened, got %v, %v, %v", option != nil, input, err)
	}
}
