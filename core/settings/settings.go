// Package settings holds the voice configuration chosen by the site owner.
//
// Settings are read once when a session connects and stay fixed for the
// lifetime of that session.
package settings

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
)

type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
	VoiceMarin   Voice = "marin"
	VoiceCedar   Voice = "cedar"
)

// DefaultVoice is used when nothing was configured and as the stand-in for
// realtime-only voices whenever speech has to be synthesized.
const DefaultVoice = VoiceAlloy

// DefaultAdminPassword is accepted when no admin password is configured.
const DefaultAdminPassword = "admin123"

var (
	ErrInvalidVoice  = errors.New("invalid voice selection")
	ErrUnauthorized  = errors.New("invalid password")
	ErrPasswordEmpty = errors.New("password is required")
)

var (
	allVoices     = []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer, VoiceMarin, VoiceCedar}
	realtimeOnly  = []Voice{VoiceMarin, VoiceCedar}
	synthesizable = []Voice{VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer}
)

// Voices returns every selectable voice.
func Voices() []Voice { return slices.Clone(allVoices) }

// TTSVoices returns the voices the text-to-speech endpoint can render.
func TTSVoices() []Voice { return slices.Clone(synthesizable) }

func (v Voice) Valid() bool { return slices.Contains(allVoices, v) }

// IsRealtimeOnly reports whether the voice exists only on the realtime audio
// stream and cannot be synthesized separately.
func (v Voice) IsRealtimeOnly() bool { return slices.Contains(realtimeOnly, v) }

func (v Voice) String() string { return string(v) }

// ParseVoice validates a voice name.
func ParseVoice(name string) (Voice, error) {
	voice := Voice(name)
	if !voice.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVoice, name)
	}
	return voice, nil
}

type VoiceSettings struct {
	Voice             Voice
	UseHighQualityTTS bool
}

func Default() VoiceSettings {
	return VoiceSettings{Voice: DefaultVoice, UseHighQualityTTS: true}
}

// UsesSynthesizedSpeech reports whether assistant turns are spoken through the
// text-to-speech endpoint instead of the transport's native audio.
func (s VoiceSettings) UsesSynthesizedSpeech() bool {
	return s.UseHighQualityTTS && !s.Voice.IsRealtimeOnly()
}

// SynthesisVoice returns the voice to synthesize with, substituting the
// default voice for realtime-only ones.
func (s VoiceSettings) SynthesisVoice() Voice {
	if s.Voice.IsRealtimeOnly() || !s.Voice.Valid() {
		return DefaultVoice
	}
	return s.Voice
}

func (s VoiceSettings) Validate() error {
	if !s.Voice.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVoice, s.Voice)
	}
	return nil
}

// Static serves fixed settings, for setups without a settings database.
type Static VoiceSettings

func (s Static) VoiceSettings(context.Context) (VoiceSettings, error) {
	return VoiceSettings(s), nil
}

// CheckPassword compares the admin password in constant time. An empty
// expected password falls back to [DefaultAdminPassword].
func CheckPassword(expected, given string) error {
	if given == "" {
		return ErrPasswordEmpty
	}
	if expected == "" {
		expected = DefaultAdminPassword
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(given)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
