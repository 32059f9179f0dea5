package config

import "time"

type Config struct {
	Assistant   AssistantConfig
	OpenAI      OpenAIConfig
	Deepgram    DeepgramConfig
	Speech      SpeechConfig
	Audio       AudioConfig
	Portfolio   PortfolioConfig
	Settings    SettingsConfig
	Credentials CredentialsConfig
	DatabaseURL string
}

type AssistantConfig struct {
	Name           string
	Owner          string
	WelcomeMessage string
	WelcomeDelay   time.Duration
	ConnectTimeout time.Duration
}

type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	RealtimeModel string
}

type DeepgramConfig struct {
	APIKey string
}

type SpeechConfig struct {
	Provider string
	Timeout  time.Duration
}

type AudioConfig struct {
	Backend string
}

type PortfolioConfig struct {
	File string
}

// SettingsConfig holds the voice settings used when no database is
// configured, and the admin password guarding changes.
type SettingsConfig struct {
	Voice         string
	UseTTS        bool
	AdminPassword string
}

type CredentialsConfig struct {
	Endpoint string
}
