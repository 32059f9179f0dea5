package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vsurfcode/portfolio-voice/core/events"
	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"github.com/vsurfcode/portfolio-voice/core/realtime"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	"github.com/vsurfcode/portfolio-voice/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultRealtimeModel  = "gpt-realtime"
	DefaultWelcomeDelay   = time.Second
	DefaultConnectTimeout = 15 * time.Second

	defaultOwnerName = "the site owner"
)

// Session manages one realtime conversation at a time: it connects and tears
// down the transport, folds its events into a transcript and routes assistant
// speech to local playback.
//
// All methods are safe for concurrent use. Callbacks are never invoked while
// the session holds its lock, so they may call back into the session.
type Session struct {
	transportFactory realtime.Factory
	credentials      CredentialProvider
	portfolio        PortfolioProvider
	voiceSettings    VoiceSettingsStore
	arbiter          *audioArbiter

	model          string
	assistantName  string
	ownerName      string
	welcomeMessage string
	welcomeDelay   time.Duration
	connectTimeout time.Duration
	callbacks      sessionCallbacks

	mu           sync.Mutex
	closed       bool
	state        State
	sessionID    string
	transport    realtime.Transport
	settings     settings.VoiceSettings
	owner        string
	reconciler   reconciler
	listening    bool
	welcomeSent  bool
	welcomeTimer *time.Timer
	err          error
}

type sessionCallbacks struct {
	onTranscript            func([]TranscriptEntry)
	onStateChanged          func(State)
	onSpeakingStateChanged  func(bool)
	onListeningStateChanged func(bool)
	onError                 func(error)
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		arbiter:        newAudioArbiter(),
		model:          DefaultRealtimeModel,
		welcomeDelay:   DefaultWelcomeDelay,
		connectTimeout: DefaultConnectTimeout,
		settings:       settings.Default(),
		reconciler:     newReconciler(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.arbiter.onSpeakingChanged = func(speaking bool) {
		if s.callbacks.onSpeakingStateChanged != nil {
			s.callbacks.onSpeakingStateChanged(speaking)
		}
	}

	return s
}

// sessionEffects collects what has to happen after the lock is released.
type sessionEffects struct {
	state             *State
	listening         *bool
	transcriptChanged bool
	err               error
	speech            *speechRequest
}

type speechRequest struct {
	scope string
	text  string
	voice settings.Voice
}

func (s *Session) apply(effects sessionEffects) {
	if effects.speech != nil {
		s.arbiter.Speak(effects.speech.scope, effects.speech.text, effects.speech.voice)
	}
	if effects.state != nil && s.callbacks.onStateChanged != nil {
		s.callbacks.onStateChanged(*effects.state)
	}
	if effects.listening != nil && s.callbacks.onListeningStateChanged != nil {
		s.callbacks.onListeningStateChanged(*effects.listening)
	}
	if effects.transcriptChanged && s.callbacks.onTranscript != nil {
		s.callbacks.onTranscript(s.Transcript())
	}
	if effects.err != nil && s.callbacks.onError != nil {
		s.callbacks.onError(effects.err)
	}
}

// fail stores err as the current error and reports it.
func (s *Session) fail(ctx context.Context, err error) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.apply(sessionEffects{err: err})
	return err
}

// Connect opens a new session. It fetches a token, builds the system prompt
// from the portfolio facts and dials the transport. On success the
// microphone is unmuted and the welcome message is scheduled.
func (s *Session) Connect(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "connect session")
	defer span.End()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.fail(ctx, ErrSessionClosed)
	}
	if s.state != StateDisconnected {
		s.mu.Unlock()
		// the error slot belongs to the running session
		span.RecordError(ErrAlreadyConnected)
		span.SetStatus(codes.Error, ErrAlreadyConnected.Error())
		return ErrAlreadyConnected
	}

	s.err = nil
	id := uuid.NewString()
	s.sessionID = id
	s.state = StateConnecting
	s.reconciler.reset()
	s.listening = false
	s.welcomeSent = false
	s.mu.Unlock()

	span.SetAttributes(attribute.String("session.id", id))
	s.arbiter.Open(id)
	s.apply(sessionEffects{state: utils.Ptr(StateConnecting), transcriptChanged: true})

	voiceSettings := s.loadVoiceSettings(ctx)
	span.SetAttributes(
		attribute.String("session.voice", voiceSettings.Voice.String()),
		attribute.Bool("session.synthesized_speech", voiceSettings.UsesSynthesizedSpeech()),
	)

	token, err := s.fetchToken(ctx)
	if err != nil {
		return s.abortConnect(ctx, id, &CredentialError{Err: err})
	}

	owner, instructions := s.buildInstructions(ctx)

	s.mu.Lock()
	if s.sessionID != id {
		s.mu.Unlock()
		return ErrConnectAborted
	}
	s.settings = voiceSettings
	s.owner = owner
	s.mu.Unlock()

	transport, err := s.openTransport(ctx, id, token, s.transportConfig(voiceSettings, instructions))
	if err != nil {
		return s.abortConnect(ctx, id, err)
	}

	listening := true
	if err := transport.Mute(false); err != nil {
		listening = false
		logger.Warn("failed to unmute microphone", "error", err)
	}

	s.mu.Lock()
	if s.sessionID != id || s.state != StateConnecting {
		s.mu.Unlock()
		if err := closeTransport(ctx, transport); err != nil {
			logger.Warn("failed to close aborted transport", "error", err)
		}
		span.AddEvent("aborted by disconnect")
		return ErrConnectAborted
	}
	s.transport = transport
	s.state = StateConnected
	s.listening = listening
	s.welcomeTimer = time.AfterFunc(s.welcomeDelay, func() { s.sendWelcome(id) })
	s.mu.Unlock()

	s.apply(sessionEffects{state: utils.Ptr(StateConnected), listening: utils.Ptr(listening)})
	return nil
}

// abortConnect returns a failed connect to the disconnected state. If a
// disconnect already reset the session, the error is only returned.
func (s *Session) abortConnect(ctx context.Context, id string, err error) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	s.mu.Lock()
	if s.sessionID != id {
		s.mu.Unlock()
		return err
	}
	s.sessionID = ""
	s.state = StateDisconnected
	s.reconciler.reset()
	s.err = err
	s.mu.Unlock()

	s.arbiter.Release(id)
	s.apply(sessionEffects{state: utils.Ptr(StateDisconnected), err: err})
	return err
}

func (s *Session) loadVoiceSettings(ctx context.Context) settings.VoiceSettings {
	if s.voiceSettings == nil {
		return settings.Default()
	}

	voiceSettings, err := s.voiceSettings.VoiceSettings(ctx)
	if err != nil {
		logger.Warn("failed to load voice settings, using defaults", "error", err)
		return settings.Default()
	}
	if err := voiceSettings.Validate(); err != nil {
		logger.Warn("invalid voice settings, using defaults", "error", err)
		return settings.Default()
	}
	return voiceSettings
}

func (s *Session) fetchToken(ctx context.Context) (string, error) {
	if s.credentials == nil {
		return "", fmt.Errorf("no credential provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	token, err := s.credentials.Token(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("credential provider returned an empty token")
	}
	return token, nil
}

// buildInstructions returns the owner's name and the system prompt. Missing
// facts leave the assistant with an empty snapshot rather than failing the
// connect.
func (s *Session) buildInstructions(ctx context.Context) (string, string) {
	var facts portfolio.Facts
	if s.portfolio != nil {
		loaded, err := s.portfolio.Facts(ctx)
		if err != nil {
			logger.Warn("failed to load portfolio facts, continuing without them", "error", err)
		} else {
			facts = loaded
		}
	}

	owner := s.ownerName
	if owner == "" {
		owner = facts.OwnerName(defaultOwnerName)
	}

	snapshot, err := portfolio.Snapshot(facts)
	if err != nil {
		logger.Warn("failed to serialize portfolio facts", "error", err)
		snapshot = portfolio.Empty
	}

	return owner, portfolio.Instructions(owner, snapshot)
}

func (s *Session) transportConfig(voiceSettings settings.VoiceSettings, instructions string) realtime.Config {
	modality := realtime.ModalityAudio
	if voiceSettings.UsesSynthesizedSpeech() {
		modality = realtime.ModalityText
	}

	return realtime.Config{
		Model:            s.model,
		Instructions:     instructions,
		Voice:            voiceSettings.Voice.String(),
		OutputModalities: []realtime.Modality{modality},
		Speed:            realtime.DefaultSpeed,
		TurnDetection:    realtime.DefaultTurnDetection(),
	}
}

func (s *Session) openTransport(ctx context.Context, id, token string, config realtime.Config) (realtime.Transport, error) {
	if s.transportFactory == nil {
		return nil, &TransportError{Op: opConnect, Err: fmt.Errorf("no transport configured")}
	}

	transport, err := s.transportFactory(config, func(event events.Event) { s.handleEvent(id, event) })
	if err != nil {
		return nil, &TransportError{Op: opConnect, Err: err}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	if err := transport.Connect(dialCtx, token); err != nil {
		if closeErr := closeTransport(ctx, transport); closeErr != nil {
			logger.Debug("failed to close transport after failed connect", "error", closeErr)
		}
		return nil, &TransportError{Op: opConnect, Err: err}
	}

	return transport, nil
}

// handleEvent is the single entry point for transport events. Events from a
// session other than the current one are dropped.
func (s *Session) handleEvent(id string, event events.Event) {
	s.mu.Lock()
	if s.sessionID != id || s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}

	var effects sessionEffects
	switch e := event.(type) {
	case events.TransportError:
		err := &TransportError{Message: e.Message}
		s.err = err
		effects.err = err
		logger.Warn("transport reported an error", "message", e.Message)

	case events.AssistantAudioStarted:
		s.mu.Unlock()
		s.arbiter.NativeStarted(id)
		return

	case events.AssistantAudioFrame:
		s.mu.Unlock()
		s.arbiter.NativeFrame(id, e.Audio)
		return

	case events.AssistantAudioStopped:
		s.mu.Unlock()
		s.arbiter.NativeStopped(id)
		return

	case events.UserSpeechStarted:
		s.mu.Unlock()
		s.arbiter.Interrupt(id)
		return

	default:
		result := s.reconciler.apply(event)
		effects.transcriptChanged = result.changed
		if result.assistantMessage != nil && s.settings.UsesSynthesizedSpeech() {
			effects.speech = &speechRequest{scope: id, text: result.assistantMessage.Content, voice: s.settings.Voice}
		}
	}
	s.mu.Unlock()

	s.apply(effects)
}

// sendWelcome appends and speaks the greeting at most once per session. The
// greeting always goes through speech synthesis, with a standard voice
// standing in for realtime-only ones.
func (s *Session) sendWelcome(id string) {
	s.mu.Lock()
	if s.sessionID != id || s.state != StateConnected || s.welcomeSent {
		s.mu.Unlock()
		return
	}
	s.welcomeSent = true
	s.welcomeTimer = nil

	text := s.welcomeMessage
	if text == "" {
		text = fmt.Sprintf("Welcome to %s's portfolio! Feel free to ask anything about %s.", s.owner, s.owner)
	}
	s.reconciler.appendMessage(events.RoleAssistant, text)
	voice := s.settings.SynthesisVoice()
	s.mu.Unlock()

	s.apply(sessionEffects{
		transcriptChanged: true,
		speech:            &speechRequest{scope: id, text: text, voice: voice},
	})
}

// Disconnect tears the session down. It is safe to call at any time and
// never fails; close errors are logged.
func (s *Session) Disconnect(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "disconnect session")
	defer span.End()

	s.mu.Lock()
	wasActive := s.state != StateDisconnected
	id := s.sessionID
	transport := s.transport
	if s.welcomeTimer != nil {
		s.welcomeTimer.Stop()
		s.welcomeTimer = nil
	}
	s.sessionID = ""
	s.transport = nil
	s.state = StateDisconnected
	s.reconciler.reset()
	s.listening = false
	s.welcomeSent = false
	s.err = nil
	s.mu.Unlock()

	if id != "" {
		s.arbiter.Release(id)
	}

	if transport != nil {
		if err := closeTransport(ctx, transport); err != nil {
			span.RecordError(err)
			logger.Warn("failed to close transport", "error", err)
		}
	}

	if wasActive {
		s.apply(sessionEffects{
			state:             utils.Ptr(StateDisconnected),
			listening:         utils.Ptr(false),
			transcriptChanged: true,
		})
	}
}

// ToggleMic mutes or unmutes the microphone on the transport.
func (s *Session) ToggleMic(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "toggle microphone")
	defer span.End()

	s.mu.Lock()
	s.err = nil
	if s.state != StateConnected || s.transport == nil {
		s.mu.Unlock()
		return s.fail(ctx, ErrNotConnected)
	}

	listening := !s.listening
	transport := s.transport
	s.mu.Unlock()

	if err := transport.Mute(!listening); err != nil {
		return s.fail(ctx, &TransportError{Op: opMute, Err: err})
	}

	s.mu.Lock()
	if s.transport != transport {
		// disconnected or reconnected while muting
		s.mu.Unlock()
		return s.fail(ctx, ErrNotConnected)
	}
	s.listening = listening
	s.mu.Unlock()

	span.SetAttributes(attribute.Bool("session.listening", listening))
	s.apply(sessionEffects{listening: utils.Ptr(listening)})
	return nil
}

// SendText sends a typed message. The live assistant buffer is cleared since
// a new response is expected.
func (s *Session) SendText(ctx context.Context, message string) error {
	ctx, span := tracer.Start(ctx, "send text")
	defer span.End()

	message = strings.TrimSpace(message)

	s.mu.Lock()
	s.err = nil
	if s.state != StateConnected || s.transport == nil {
		s.mu.Unlock()
		return s.fail(ctx, ErrNotConnected)
	}
	if message == "" {
		s.mu.Unlock()
		return s.fail(ctx, ErrEmptyMessage)
	}
	s.reconciler.assistant.Reset()
	transport := s.transport
	s.mu.Unlock()

	s.apply(sessionEffects{transcriptChanged: true})

	if err := transport.SendMessage(ctx, message); err != nil {
		return s.fail(ctx, &TransportError{Op: opSend, Err: err})
	}
	return nil
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSnapshot{
		State:         s.state,
		Listening:     s.listening,
		Speaking:      s.arbiter.Speaking(),
		AssistantName: s.assistantName,
		VoiceSettings: s.settings,
		Transcript:    s.reconciler.transcript(),
		Err:           s.err,
	}
}

// Transcript returns finalized messages followed by the live user and live
// assistant text.
func (s *Session) Transcript() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.transcript()
}

// Messages returns the finalized conversation log.
func (s *Session) Messages() []ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.messages()
}

// Close disconnects and rejects any further Connect.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Disconnect(ctx)
}
