package openai

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vsurfcode/portfolio-voice/core/realtime"
)

const (
	clientEventSessionUpdate      = "session.update"
	clientEventItemCreate         = "conversation.item.create"
	clientEventResponseCreate     = "response.create"
	clientEventInputAudioAppend   = "input_audio_buffer.append"
	clientEventInputAudioClear    = "input_audio_buffer.clear"
	serverEventError              = "error"
	serverEventSpeechStarted      = "input_audio_buffer.speech_started"
	serverEventTranscriptionDelta = "conversation.item.input_audio_transcription.delta"
	serverEventTranscriptionDone  = "conversation.item.input_audio_transcription.completed"
	serverEventResponseCreated    = "response.created"
	serverEventOutputTextDelta    = "response.output_text.delta"
	serverEventAudioTranscript    = "response.output_audio_transcript.delta"
	serverEventOutputAudioDelta   = "response.output_audio.delta"
	serverEventOutputAudioDone    = "response.output_audio.done"
	serverEventAudioBufferStopped = "output_audio_buffer.stopped"
	serverEventResponseDone       = "response.done"
	serverEventItemDone           = "conversation.item.done"
)

type clientEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`

	Session *sessionConfig    `json:"session,omitempty"`
	Item    *conversationItem `json:"item,omitempty"`
	Audio   string            `json:"audio,omitempty"`
}

func newClientEvent(eventType string) clientEvent {
	return clientEvent{EventID: uuid.NewString(), Type: eventType}
}

type sessionConfig struct {
	Type             string              `json:"type"`
	Model            string              `json:"model,omitempty"`
	Instructions     string              `json:"instructions,omitempty"`
	OutputModalities []realtime.Modality `json:"output_modalities,omitempty"`
	Audio            audioConfig         `json:"audio"`
}

type audioConfig struct {
	Input  audioInputConfig   `json:"input"`
	Output *audioOutputConfig `json:"output,omitempty"`
}

type audioFormat struct {
	Type string `json:"type"`
	Rate int    `json:"rate"`
}

type audioInputConfig struct {
	Format        audioFormat          `json:"format"`
	Transcription *transcriptionConfig `json:"transcription,omitempty"`
	TurnDetection turnDetectionConfig  `json:"turn_detection"`
}

type transcriptionConfig struct {
	Model string `json:"model"`
}

type turnDetectionConfig struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int64   `json:"prefix_padding_ms"`
	SilenceDurationMs int64   `json:"silence_duration_ms"`
	CreateResponse    bool    `json:"create_response"`
	InterruptResponse bool    `json:"interrupt_response"`
}

type audioOutputConfig struct {
	Format audioFormat `json:"format"`
	Voice  string      `json:"voice,omitempty"`
	Speed  float64     `json:"speed,omitempty"`
}

type conversationItem struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []contentPart `json:"content,omitempty"`
}

type contentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// serverEvent holds the union of the fields the transport reads from server
// events. Unused fields stay empty.
type serverEvent struct {
	Type       string            `json:"type"`
	ItemID     string            `json:"item_id"`
	Delta      string            `json:"delta"`
	Transcript string            `json:"transcript"`
	Item       *conversationItem `json:"item"`
	Error      *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseServerEvent(data []byte) (serverEvent, error) {
	var event serverEvent
	err := json.Unmarshal(data, &event)
	return event, err
}
