package events

const (
	// KindAssistantAudioStarted identifies start of native audio output.
	KindAssistantAudioStarted Kind = "assistant_audio.started"
	// KindAssistantAudioFrame identifies a native audio output frame.
	KindAssistantAudioFrame Kind = "assistant_audio.frame"
	// KindAssistantAudioStopped identifies end of native audio output.
	KindAssistantAudioStopped Kind = "assistant_audio.stopped"
)

// AssistantAudioStarted marks the start of native assistant audio.
type AssistantAudioStarted struct{ Base }

// NewAssistantAudioStarted creates an assistant audio started event.
func NewAssistantAudioStarted() AssistantAudioStarted {
	return AssistantAudioStarted{Base: NewBase(KindAssistantAudioStarted)}
}

// AssistantAudioFrame carries a native assistant audio frame.
type AssistantAudioFrame struct {
	Base
	Audio []byte
}

// NewAssistantAudioFrame creates an assistant audio frame event.
func NewAssistantAudioFrame(audio []byte) AssistantAudioFrame {
	return AssistantAudioFrame{Base: NewBase(KindAssistantAudioFrame), Audio: audio}
}

// AssistantAudioStopped marks the end of native assistant audio.
type AssistantAudioStopped struct{ Base }

// NewAssistantAudioStopped creates an assistant audio stopped event.
func NewAssistantAudioStopped() AssistantAudioStopped {
	return AssistantAudioStopped{Base: NewBase(KindAssistantAudioStopped)}
}
