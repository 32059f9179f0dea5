package texttospeech

import (
	"errors"

	"github.com/vsurfcode/portfolio-voice/core/audio"
)

// DefaultSpeed is slightly slower than natural speech, which reads better for
// longer portfolio answers.
const DefaultSpeed = 0.95

// ErrVoiceNotSupported is returned when a voice can only be used by the
// realtime endpoint and not for standalone synthesis.
var ErrVoiceNotSupported = errors.New("voice not supported for speech synthesis")

type SynthesisOptions struct {
	Voice        string
	Speed        float64
	EncodingInfo audio.EncodingInfo
}

type SynthesisOption func(*SynthesisOptions)

// NewSynthesisOptions applies opts over the defaults: 24 kHz linear16 audio at
// [DefaultSpeed] with no explicit voice.
func NewSynthesisOptions(opts ...SynthesisOption) SynthesisOptions {
	options := SynthesisOptions{
		Speed:        DefaultSpeed,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithVoice(voice string) SynthesisOption {
	return func(o *SynthesisOptions) { o.Voice = voice }
}

func WithSpeed(speed float64) SynthesisOption {
	return func(o *SynthesisOptions) {
		if speed <= 0 {
			return
		}
		o.Speed = speed
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		if encodingInfo.IsZero() {
			logger.Warn("ignoring incomplete encoding info", "sample_rate", encodingInfo.SampleRate, "format", encodingInfo.Format.Name())
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
