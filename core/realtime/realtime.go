// Package realtime defines the contract between a conversation session and
// the bidirectional transport that carries it.
package realtime

import (
	"context"
	"time"

	"github.com/vsurfcode/portfolio-voice/core/events"
)

type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// DefaultSpeed matches the speed used for synthesized speech so both audio
// paths sound alike.
const DefaultSpeed = 0.95

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	Threshold         float64
	PrefixPadding     time.Duration
	SilenceDuration   time.Duration
	CreateResponse    bool
	InterruptResponse bool
}

// DefaultTurnDetection returns server VAD settings tuned for a short
// question-and-answer conversation.
func DefaultTurnDetection() TurnDetection {
	return TurnDetection{
		Threshold:         0.5,
		PrefixPadding:     250 * time.Millisecond,
		SilenceDuration:   650 * time.Millisecond,
		CreateResponse:    true,
		InterruptResponse: true,
	}
}

type Config struct {
	Model            string
	Instructions     string
	Voice            string
	OutputModalities []Modality
	Speed            float64
	TurnDetection    TurnDetection
}

// EmitsAudio reports whether the transport is expected to stream native
// assistant audio.
func (c Config) EmitsAudio() bool {
	for _, modality := range c.OutputModalities {
		if modality == ModalityAudio {
			return true
		}
	}
	return false
}

// Transport is one realtime connection. Implementations deliver events in
// order through the callback passed to their [Factory]. Teardown methods are
// optional and discovered by the session at disconnect.
type Transport interface {
	Connect(ctx context.Context, token string) error
	SendMessage(ctx context.Context, text string) error
	Mute(muted bool) error
}

// Factory builds a transport for a single session.
type Factory func(config Config, onEvent func(events.Event)) (Transport, error)
