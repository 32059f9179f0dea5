package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SpeechProviderOpenAI   = "openai"
	SpeechProviderDeepgram = "deepgram"
	SpeechProviderNone     = "none"

	AudioBackendMiniaudio = "miniaudio"
	AudioBackendPortaudio = "portaudio"
	AudioBackendNone      = "none"
)

// FileEnv names an optional YAML file whose keys are the lower-cased
// environment variable names. Environment variables win over the file.
const FileEnv = "PORTFOLIO_VOICE_CONFIG"

var defaults = map[string]any{
	"openai_realtime_model": "gpt-realtime",
	"tts_provider":          SpeechProviderOpenAI,
	"tts_timeout":           "30s",
	"audio_backend":         AudioBackendMiniaudio,
	"assistant_name":        "Assistant",
	"welcome_delay":         "1s",
	"connect_timeout":       "15s",
	"voice":                 "alloy",
	// high quality TTS is on unless explicitly disabled
	"use_tts": "true",
}

func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig(v)
	if err != nil {
		return nil, err
	}

	audio, err := loadAudioConfig(v)
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig(v)
	if err != nil {
		return nil, err
	}

	voiceSettings, err := loadSettingsConfig(v)
	if err != nil {
		return nil, err
	}

	openAI := loadOpenAIConfig(v)
	credentials := CredentialsConfig{Endpoint: v.GetString("credential_endpoint")}
	if openAI.APIKey == "" && credentials.Endpoint == "" {
		return nil, fmt.Errorf("either OPENAI_API_KEY or CREDENTIAL_ENDPOINT must be set")
	}
	if speech.Provider == SpeechProviderOpenAI && openAI.APIKey == "" {
		return nil, fmt.Errorf("TTS_PROVIDER=openai requires OPENAI_API_KEY")
	}

	deepgram := DeepgramConfig{APIKey: v.GetString("deepgram_api_key")}
	if speech.Provider == SpeechProviderDeepgram && deepgram.APIKey == "" {
		return nil, fmt.Errorf("TTS_PROVIDER=deepgram requires DEEPGRAM_API_KEY")
	}

	return &Config{
		Assistant:   assistant,
		OpenAI:      openAI,
		Deepgram:    deepgram,
		Speech:      speech,
		Audio:       audio,
		Portfolio:   PortfolioConfig{File: v.GetString("portfolio_file")},
		Settings:    voiceSettings,
		Credentials: credentials,
		DatabaseURL: v.GetString("database_url"),
	}, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	path := os.Getenv(FileEnv)
	if path == "" {
		return v, nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return v, nil
}

func loadOpenAIConfig(v *viper.Viper) OpenAIConfig {
	return OpenAIConfig{
		APIKey:        v.GetString("openai_api_key"),
		BaseURL:       v.GetString("openai_base_url"),
		RealtimeModel: v.GetString("openai_realtime_model"),
	}
}

func loadSpeechConfig(v *viper.Viper) (SpeechConfig, error) {
	provider := strings.ToLower(v.GetString("tts_provider"))
	switch provider {
	case SpeechProviderOpenAI, SpeechProviderDeepgram, SpeechProviderNone:
	default:
		return SpeechConfig{}, fmt.Errorf("unknown TTS_PROVIDER %q", provider)
	}

	timeout, err := duration(v, "tts_timeout")
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{Provider: provider, Timeout: timeout}, nil
}

func loadAudioConfig(v *viper.Viper) (AudioConfig, error) {
	backend := strings.ToLower(v.GetString("audio_backend"))
	switch backend {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
	default:
		return AudioConfig{}, fmt.Errorf("unknown AUDIO_BACKEND %q", backend)
	}
	return AudioConfig{Backend: backend}, nil
}

func loadAssistantConfig(v *viper.Viper) (AssistantConfig, error) {
	welcomeDelay, err := duration(v, "welcome_delay")
	if err != nil {
		return AssistantConfig{}, err
	}

	connectTimeout, err := duration(v, "connect_timeout")
	if err != nil {
		return AssistantConfig{}, err
	}

	return AssistantConfig{
		Name:           v.GetString("assistant_name"),
		Owner:          v.GetString("portfolio_owner"),
		WelcomeMessage: v.GetString("welcome_message"),
		WelcomeDelay:   welcomeDelay,
		ConnectTimeout: connectTimeout,
	}, nil
}

func loadSettingsConfig(v *viper.Viper) (SettingsConfig, error) {
	raw := v.GetString("use_tts")
	useTTS, err := parseBool(raw)
	if err != nil {
		return SettingsConfig{}, fmt.Errorf("invalid USE_TTS %q: %w", raw, err)
	}

	return SettingsConfig{
		Voice:         v.GetString("voice"),
		UseTTS:        useTTS,
		AdminPassword: v.GetString("admin_password"),
	}, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "t", "true", "yes", "on":
		return true, nil
	case "0", "f", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}

// duration reads key as a Go duration string. Malformed values are errors
// rather than zero.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	name := strings.ToUpper(key)

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, raw)
	}
	return value, nil
}
