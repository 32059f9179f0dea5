// Package openai implements the realtime transport over the OpenAI Realtime
// websocket API.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vsurfcode/portfolio-voice/core/audio"
	"github.com/vsurfcode/portfolio-voice/core/events"
	"github.com/vsurfcode/portfolio-voice/core/realtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultURL                = "wss://api.openai.com/v1/realtime"
	defaultTranscriptionModel = "whisper-1"
	closeGracePeriod          = time.Second
)

// AudioInput supplies microphone audio as 24 kHz linear16 frames.
type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

type Transport struct {
	url                string
	transcriptionModel string
	input              AudioInput
	dialer             *websocket.Dialer

	config  realtime.Config
	onEvent func(events.Event)

	conn     *websocket.Conn
	writeMu  sync.Mutex
	readDone chan struct{}

	mu           sync.Mutex
	connected    bool
	closed       bool
	muted        bool
	audioStarted bool
}

type TransportOption func(*Transport)

func WithURL(rawURL string) TransportOption {
	return func(t *Transport) { t.url = rawURL }
}

func WithAudioInput(input AudioInput) TransportOption {
	return func(t *Transport) { t.input = input }
}

func WithTranscriptionModel(model string) TransportOption {
	return func(t *Transport) { t.transcriptionModel = model }
}

func NewTransport(config realtime.Config, onEvent func(events.Event), opts ...TransportOption) *Transport {
	if onEvent == nil {
		onEvent = func(events.Event) {}
	}

	t := &Transport{
		url:                defaultURL,
		transcriptionModel: defaultTranscriptionModel,
		dialer:             websocket.DefaultDialer,
		config:             config,
		onEvent:            onEvent,
		muted:              true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFactory returns a [realtime.Factory] building websocket transports with
// the given options.
func NewFactory(opts ...TransportOption) realtime.Factory {
	return func(config realtime.Config, onEvent func(events.Event)) (realtime.Transport, error) {
		return NewTransport(config, onEvent, opts...), nil
	}
}

// Connect dials the realtime endpoint with an ephemeral token, configures the
// session and starts delivering events. The microphone stays muted until
// [Transport.Mute] is called with false.
func (t *Transport) Connect(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "connect realtime transport")
	defer span.End()
	span.SetAttributes(
		attribute.String("realtime.model", t.config.Model),
		attribute.String("realtime.voice", t.config.Voice),
		attribute.Bool("realtime.native_audio", t.config.EmitsAudio()),
	)

	if err := t.connect(ctx, token); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (t *Transport) connect(ctx context.Context, token string) error {
	t.mu.Lock()
	if t.connected || t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport already used")
	}
	t.mu.Unlock()

	endpoint, err := url.Parse(t.url)
	if err != nil {
		return fmt.Errorf("invalid realtime url: %w", err)
	}
	if t.config.Model != "" {
		query := endpoint.Query()
		query.Set("model", t.config.Model)
		endpoint.RawQuery = query.Encode()
	}

	conn, resp, err := t.dialer.DialContext(ctx, endpoint.String(), http.Header{"Authorization": {"Bearer " + token}})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to open realtime socket (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("failed to open realtime socket: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.readDone = make(chan struct{})
	t.mu.Unlock()

	if err := t.send(t.sessionUpdate()); err != nil {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		_ = conn.Close()
		return fmt.Errorf("failed to configure realtime session: %w", err)
	}

	go t.readMessages()

	if t.input != nil {
		if err := t.input.StartCapture(context.Background(), t.appendInputAudio); err != nil {
			logger.Warn("failed to start audio capture, continuing text only", "error", err)
		}
	}

	return nil
}

func (t *Transport) sessionUpdate() clientEvent {
	detection := t.config.TurnDetection
	session := &sessionConfig{
		Type:             "realtime",
		Model:            t.config.Model,
		Instructions:     t.config.Instructions,
		OutputModalities: t.config.OutputModalities,
		Audio: audioConfig{
			Input: audioInputConfig{
				Format:        audioFormat{Type: "audio/pcm", Rate: audio.DefaultSampleRate},
				Transcription: &transcriptionConfig{Model: t.transcriptionModel},
				TurnDetection: turnDetectionConfig{
					Type:              "server_vad",
					Threshold:         detection.Threshold,
					PrefixPaddingMs:   detection.PrefixPadding.Milliseconds(),
					SilenceDurationMs: detection.SilenceDuration.Milliseconds(),
					CreateResponse:    detection.CreateResponse,
					InterruptResponse: detection.InterruptResponse,
				},
			},
		},
	}
	if t.config.EmitsAudio() {
		session.Audio.Output = &audioOutputConfig{
			Format: audioFormat{Type: "audio/pcm", Rate: audio.DefaultSampleRate},
			Voice:  t.config.Voice,
			Speed:  t.config.Speed,
		}
	}

	event := newClientEvent(clientEventSessionUpdate)
	event.Session = session
	return event
}

// SendMessage adds a user text message to the conversation and asks for a
// response.
func (t *Transport) SendMessage(ctx context.Context, text string) error {
	_, span := tracer.Start(ctx, "send realtime message")
	defer span.End()

	create := newClientEvent(clientEventItemCreate)
	create.Item = &conversationItem{
		Type:    events.ItemTypeMessage,
		Role:    string(events.RoleUser),
		Content: []contentPart{{Type: events.ContentInputText, Text: text}},
	}

	err := errors.Join(t.send(create), t.send(newClientEvent(clientEventResponseCreate)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Mute stops forwarding microphone audio. Muting also clears audio the server
// has buffered but not yet committed.
func (t *Transport) Mute(muted bool) error {
	t.mu.Lock()
	if !t.connected || t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport not connected")
	}
	wasMuted := t.muted
	t.muted = muted
	t.mu.Unlock()

	if muted && !wasMuted {
		return t.send(newClientEvent(clientEventInputAudioClear))
	}
	return nil
}

// Close stops capture and closes the socket. It waits for the read loop to
// finish or ctx to expire.
func (t *Transport) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	readDone := t.readDone
	t.mu.Unlock()

	var errs []error
	if t.input != nil {
		if err := t.input.StopCapture(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop capture: %w", err))
		}
	}

	if conn == nil {
		return errors.Join(errs...)
	}

	t.writeMu.Lock()
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeGracePeriod)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		logger.Debug("failed to send close frame", "error", err)
	}
	t.writeMu.Unlock()

	select {
	case <-readDone:
	case <-ctx.Done():
	case <-time.After(closeGracePeriod):
	}

	if err := conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close websocket: %w", err))
	}
	return errors.Join(errs...)
}

func (t *Transport) appendInputAudio(frame []byte) {
	t.mu.Lock()
	forward := t.connected && !t.closed && !t.muted
	t.mu.Unlock()
	if !forward || len(frame) == 0 {
		return
	}

	event := newClientEvent(clientEventInputAudioAppend)
	event.Audio = base64.StdEncoding.EncodeToString(frame)
	if err := t.send(event); err != nil {
		logger.Debug("failed to append input audio", "error", err)
	}
}

func (t *Transport) send(event clientEvent) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if conn == nil || closed {
		return fmt.Errorf("transport not connected")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := conn.WriteJSON(event); err != nil {
		return fmt.Errorf("failed to write %s: %w", event.Type, err)
	}
	return nil
}

func (t *Transport) readMessages() {
	defer close(t.readDone)

	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.onEvent(events.NewTransportError(fmt.Sprintf("connection lost: %v", err)))
			}
			return
		}

		event, err := parseServerEvent(msg)
		if err != nil {
			logger.Debug("failed to unmarshal realtime message", "error", err)
			continue
		}

		for _, mapped := range t.mapServerEvent(event) {
			t.onEvent(mapped)
		}
	}
}

func (t *Transport) mapServerEvent(event serverEvent) []events.Event {
	switch event.Type {
	case serverEventError:
		message := "Connection error occurred"
		if event.Error != nil && event.Error.Message != "" {
			message = event.Error.Message
		}
		return []events.Event{events.NewTransportError(message)}

	case serverEventSpeechStarted:
		// the server cancels the response it was streaming, so the next
		// audio delta starts a new stream
		t.mu.Lock()
		t.audioStarted = false
		t.mu.Unlock()
		return []events.Event{events.NewUserSpeechStarted(event.ItemID)}

	case serverEventTranscriptionDelta:
		return []events.Event{events.NewUserTranscriptDelta(event.ItemID, event.Delta)}

	case serverEventTranscriptionDone:
		// Audio history items usually arrive before their transcript, so the
		// finished transcript is also reported as the user's message.
		return []events.Event{
			events.NewUserTranscriptCompleted(event.ItemID, event.Transcript),
			events.NewHistoryItemAdded(event.ItemID, events.RoleUser, events.ContentPart{
				Type:       events.ContentInputAudio,
				Transcript: event.Transcript,
			}),
		}

	case serverEventResponseCreated:
		return []events.Event{events.NewAssistantResponseCreated()}

	case serverEventOutputTextDelta, serverEventAudioTranscript:
		return []events.Event{events.NewAssistantResponseTextDelta(event.ItemID, event.Delta)}

	case serverEventOutputAudioDelta:
		frame, err := base64.StdEncoding.DecodeString(event.Delta)
		if err != nil {
			logger.Debug("failed to decode output audio", "error", err)
			return nil
		}

		var mapped []events.Event
		t.mu.Lock()
		if !t.audioStarted {
			t.audioStarted = true
			mapped = append(mapped, events.NewAssistantAudioStarted())
		}
		t.mu.Unlock()
		return append(mapped, events.NewAssistantAudioFrame(frame))

	case serverEventOutputAudioDone, serverEventAudioBufferStopped:
		t.mu.Lock()
		started := t.audioStarted
		t.audioStarted = false
		t.mu.Unlock()
		if !started {
			return nil
		}
		return []events.Event{events.NewAssistantAudioStopped()}

	case serverEventResponseDone:
		return []events.Event{events.NewAssistantResponseDone()}

	case serverEventItemDone:
		if event.Item == nil {
			return nil
		}
		history := events.HistoryItemAdded{
			Base:   events.NewBase(events.KindHistoryItemAdded),
			ItemID: event.Item.ID,
			Type:   event.Item.Type,
			Role:   events.Role(event.Item.Role),
		}
		for _, part := range event.Item.Content {
			history.Content = append(history.Content, events.ContentPart{
				Type:       part.Type,
				Text:       part.Text,
				Transcript: part.Transcript,
			})
		}
		return []events.Event{history}
	}

	return nil
}
