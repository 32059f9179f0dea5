package orchestration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vsurfcode/portfolio-voice/core/audio"
	"github.com/vsurfcode/portfolio-voice/core/events"
	"github.com/vsurfcode/portfolio-voice/core/portfolio"
	"github.com/vsurfcode/portfolio-voice/core/realtime"
	"github.com/vsurfcode/portfolio-voice/core/settings"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
)

// fakeOutput is a callback-mark output. Marks fire as soon as they are set
// unless holdMarks is true, in which case releaseMarks fires them.
type fakeOutput struct {
	mu        sync.Mutex
	holdMarks bool
	audio     [][]byte
	clears    int
	pending   []func()
}

func (o *fakeOutput) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (o *fakeOutput) SendAudio(frame []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.audio = append(o.audio, frame)
	return nil
}

func (o *fakeOutput) ClearBuffer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clears++
}

func (o *fakeOutput) Mark(mark string, callback func(string)) error {
	o.mu.Lock()
	if o.holdMarks {
		o.pending = append(o.pending, func() { callback(mark) })
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()
	callback(mark)
	return nil
}

func (o *fakeOutput) releaseMarks() {
	o.mu.Lock()
	pending := o.pending
	o.pending = nil
	o.mu.Unlock()
	for _, fire := range pending {
		fire()
	}
}

func (o *fakeOutput) frames() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.audio)
}

func (o *fakeOutput) clearCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clears
}

// fakeLegacyOutput reports clip ends through a blocking AwaitMark. When gate
// is set, every SendAudio waits on it like a real-time device write.
type fakeLegacyOutput struct {
	mu     sync.Mutex
	gate   chan struct{}
	sent   int
	clears int
	awaits int
}

func (o *fakeLegacyOutput) EncodingInfo() audio.EncodingInfo { return audio.GetDefaultEncodingInfo() }

func (o *fakeLegacyOutput) SendAudio([]byte) error {
	o.mu.Lock()
	gate := o.gate
	o.mu.Unlock()
	if gate != nil {
		<-gate
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent++
	return nil
}

func (o *fakeLegacyOutput) ClearBuffer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clears++
}

func (o *fakeLegacyOutput) AwaitMark() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.awaits++
	return nil
}

func (o *fakeLegacyOutput) counts() (sent, clears, awaits int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent, o.clears, o.awaits
}

type synthesisCall struct {
	text  string
	voice string
}

// fakeTTS returns a fixed clip. When block is set, every call waits for
// release (or cancellation) before answering.
type fakeTTS struct {
	mu      sync.Mutex
	calls   []synthesisCall
	err     error
	block   chan struct{}
	started chan struct{}
}

func newBlockingTTS() *fakeTTS {
	return &fakeTTS{block: make(chan struct{}), started: make(chan struct{}, 8)}
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) ([]byte, error) {
	options := texttospeech.NewSynthesisOptions(opts...)

	f.mu.Lock()
	f.calls = append(f.calls, synthesisCall{text: text, voice: options.Voice})
	err := f.err
	block := f.block
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte{1, 2, 3, 4}, nil
}

func (f *fakeTTS) synthesisCalls() []synthesisCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]synthesisCall(nil), f.calls...)
}

// fakeTransport records calls and lets tests push events as the transport
// would.
type fakeTransport struct {
	mu         sync.Mutex
	config     realtime.Config
	onEvent    func(events.Event)
	token      string
	connectErr error
	sendErr    error
	muteErr    error
	sent       []string
	mutes      []bool
	closes     int
	connecting chan struct{}
	proceed    chan struct{}
	muting     chan struct{}
	muteGate   chan struct{}
}

func (f *fakeTransport) Connect(ctx context.Context, token string) error {
	f.mu.Lock()
	f.token = token
	connecting, proceed := f.connecting, f.proceed
	err := f.connectErr
	f.mu.Unlock()

	if connecting != nil {
		close(connecting)
	}
	if proceed != nil {
		<-proceed
	}
	return err
}

func (f *fakeTransport) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) Mute(muted bool) error {
	f.mu.Lock()
	muting, gate := f.muting, f.muteGate
	f.mu.Unlock()
	if gate != nil {
		muting <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.muteErr != nil {
		return f.muteErr
	}
	f.mutes = append(f.mutes, muted)
	return nil
}

func (f *fakeTransport) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeTransport) emit(event events.Event) {
	f.mu.Lock()
	onEvent := f.onEvent
	f.mu.Unlock()
	onEvent(event)
}

func (f *fakeTransport) closeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakeTransport) sentMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeTransport) muteCalls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.mutes...)
}

func (f *fakeTransport) factory() realtime.Factory {
	return func(config realtime.Config, onEvent func(events.Event)) (realtime.Transport, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.config = config
		f.onEvent = onEvent
		return f, nil
	}
}

func (f *fakeTransport) usedConfig() realtime.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

type fakeCredentials struct {
	token string
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeCredentials) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.token, f.err
}

type fakePortfolio struct {
	facts portfolio.Facts
	err   error
}

func (f fakePortfolio) Facts(context.Context) (portfolio.Facts, error) {
	return f.facts, f.err
}

type failingSettingsStore struct{}

func (failingSettingsStore) VoiceSettings(context.Context) (settings.VoiceSettings, error) {
	return settings.VoiceSettings{}, errors.New("database unavailable")
}

// eventually polls condition until it holds or the timeout passes.
func eventually(condition func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}
