package orchestration

import (
	"context"
	"time"

	"github.com/vsurfcode/portfolio-voice/core/audio"
	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"github.com/vsurfcode/portfolio-voice/core/realtime"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
)

type SessionOption func(*Session)

type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

type PortfolioProvider interface {
	Facts(ctx context.Context) (portfolio.Facts, error)
}

type VoiceSettingsStore interface {
	VoiceSettings(ctx context.Context) (settings.VoiceSettings, error)
}

type TextToSpeech interface {
	Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error)
}

func WithTransportFactory(factory realtime.Factory) SessionOption {
	return func(s *Session) { s.transportFactory = factory }
}

func WithCredentials(provider CredentialProvider) SessionOption {
	return func(s *Session) { s.credentials = provider }
}

func WithPortfolio(provider PortfolioProvider) SessionOption {
	return func(s *Session) { s.portfolio = provider }
}

func WithVoiceSettings(store VoiceSettingsStore) SessionOption {
	return func(s *Session) { s.voiceSettings = store }
}

func WithTextToSpeech(client TextToSpeech) SessionOption {
	return func(s *Session) { s.arbiter.textToSpeech = client }
}

type AudioOutputV0 interface {
	audioOutputBase
	AwaitMark() error
}

func WithAudioOutputV0(client AudioOutputV0) SessionOption {
	return func(s *Session) { s.arbiter.output.Set(client) }
}

type AudioOutputV1 interface {
	audioOutputBase
	Mark(string, func(string)) error
}

func WithAudioOutputV1(client AudioOutputV1) SessionOption {
	return func(s *Session) { s.arbiter.output.Set(client) }
}

// WithAssistant names the assistant and the person it represents. An empty
// owner is taken from the portfolio facts at connect time.
func WithAssistant(name, owner string) SessionOption {
	return func(s *Session) {
		s.assistantName = name
		s.ownerName = owner
	}
}

// WithWelcomeMessage overrides the greeting spoken once per session.
func WithWelcomeMessage(text string) SessionOption {
	return func(s *Session) { s.welcomeMessage = text }
}

func WithWelcomeDelay(delay time.Duration) SessionOption {
	return func(s *Session) {
		if delay >= 0 {
			s.welcomeDelay = delay
		}
	}
}

func WithRealtimeModel(model string) SessionOption {
	return func(s *Session) {
		if model != "" {
			s.model = model
		}
	}
}

// WithConnectTimeout bounds the credential fetch and the transport dial
// separately.
func WithConnectTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.connectTimeout = timeout
		}
	}
}

// WithSynthesisTimeout bounds each speech fetch.
func WithSynthesisTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		if timeout > 0 {
			s.arbiter.timeout = timeout
		}
	}
}

func WithTranscriptCallback(callback func([]TranscriptEntry)) SessionOption {
	return func(s *Session) { s.callbacks.onTranscript = callback }
}

func WithStateChangedCallback(callback func(State)) SessionOption {
	return func(s *Session) { s.callbacks.onStateChanged = callback }
}

func WithSpeakingStateChangedCallback(callback func(bool)) SessionOption {
	return func(s *Session) { s.callbacks.onSpeakingStateChanged = callback }
}

func WithListeningStateChangedCallback(callback func(bool)) SessionOption {
	return func(s *Session) { s.callbacks.onListeningStateChanged = callback }
}

// WithErrorCallback is called with every error stored in the session's error
// slot.
func WithErrorCallback(callback func(error)) SessionOption {
	return func(s *Session) { s.callbacks.onError = callback }
}

type audioOutputBase interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	ClearBuffer()
}
