package orchestration

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vsurfcode/portfolio-voice/core/settings"
)

type speakingRecorder struct {
	mu      sync.Mutex
	changes []bool
}

func (r *speakingRecorder) record(speaking bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, speaking)
}

func (r *speakingRecorder) recorded() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.changes...)
}

func newTestArbiter(tts *fakeTTS, output *fakeOutput) (*audioArbiter, *speakingRecorder) {
	recorder := &speakingRecorder{}
	arbiter := newAudioArbiter()
	arbiter.textToSpeech = tts
	arbiter.output.Set(output)
	arbiter.onSpeakingChanged = recorder.record
	arbiter.Open("session-1")
	return arbiter, recorder
}

func waitStarted(t *testing.T, tts *fakeTTS) {
	t.Helper()
	select {
	case <-tts.started:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a speech fetch")
	}
}

func TestArbiterSpeakPlaysClip(t *testing.T) {
	tts := &fakeTTS{}
	output := &fakeOutput{holdMarks: true}
	arbiter, recorder := newTestArbiter(tts, output)

	if !arbiter.Speak("session-1", "Welcome!", settings.VoiceNova) {
		t.Fatalf("expected speak request to be accepted")
	}
	arbiter.wait()

	if !arbiter.Speaking() {
		t.Fatalf("expected speaking while the clip plays")
	}
	if output.frames() != 1 {
		t.Fatalf("expected one clip sent to output, got %d", output.frames())
	}
	calls := tts.synthesisCalls()
	if len(calls) != 1 || calls[0].text != "Welcome!" || calls[0].voice != "nova" {
		t.Fatalf("unexpected synthesis calls: %+v", calls)
	}

	output.releaseMarks()
	if arbiter.Speaking() {
		t.Fatalf("expected speaking to end when the clip finished")
	}
	if got := recorder.recorded(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected speaking true then false, got %v", got)
	}
}

func TestArbiterNewestRequestWins(t *testing.T) {
	tts := newBlockingTTS()
	output := &fakeOutput{holdMarks: true}
	arbiter, _ := newTestArbiter(tts, output)

	arbiter.Speak("session-1", "first", settings.VoiceAlloy)
	waitStarted(t, tts)
	arbiter.Speak("session-1", "second", settings.VoiceAlloy)
	waitStarted(t, tts)

	close(tts.block)
	arbiter.wait()

	if output.frames() != 1 {
		t.Fatalf("expected only the newest clip to play, got %d clips", output.frames())
	}
	if !arbiter.Speaking() {
		t.Fatalf("expected the newest clip to be playing")
	}
}

func TestArbiterReleaseDuringFetchSuppressesPlayback(t *testing.T) {
	tts := newBlockingTTS()
	output := &fakeOutput{}
	arbiter, recorder := newTestArbiter(tts, output)

	arbiter.Speak("session-1", "Welcome!", settings.VoiceAlloy)
	waitStarted(t, tts)
	arbiter.Release("session-1")

	// The fetch resolves successfully after teardown.
	close(tts.block)
	arbiter.wait()

	if output.frames() != 0 {
		t.Fatalf("expected no audio after release, got %d clips", output.frames())
	}
	if arbiter.Speaking() {
		t.Fatalf("expected speaking to be false after release")
	}
	for _, speaking := range recorder.recorded() {
		if speaking {
			t.Fatalf("expected speaking never to turn on, got %v", recorder.recorded())
		}
	}
	if arbiter.Speak("session-1", "again", settings.VoiceAlloy) {
		t.Fatalf("expected released scope to reject new requests")
	}
}

func TestArbiterSynthesisFailureEndsSpeaking(t *testing.T) {
	tts := &fakeTTS{err: errors.New("quota exceeded")}
	output := &fakeOutput{}
	arbiter, recorder := newTestArbiter(tts, output)

	arbiter.Speak("session-1", "Hello", settings.VoiceAlloy)
	arbiter.wait()

	if arbiter.Speaking() || output.frames() != 0 {
		t.Fatalf("expected failed fetch to play nothing and not be speaking")
	}
	if len(recorder.recorded()) != 0 {
		t.Fatalf("expected no speaking changes, got %v", recorder.recorded())
	}
	if len(tts.synthesisCalls()) != 1 {
		t.Fatalf("expected a failed fetch not to be retried")
	}
}

func TestArbiterStopEndsPlayingClip(t *testing.T) {
	output := &fakeOutput{holdMarks: true}
	arbiter, _ := newTestArbiter(&fakeTTS{}, output)

	arbiter.Speak("session-1", "Hello", settings.VoiceAlloy)
	arbiter.wait()
	arbiter.Stop()

	if arbiter.Speaking() {
		t.Fatalf("expected stop to end speaking")
	}
	if output.clearCalls() < 2 {
		t.Fatalf("expected stop to clear the output buffer")
	}

	output.releaseMarks()
	if arbiter.Speaking() {
		t.Fatalf("expected a late mark not to change speaking")
	}
}

func TestArbiterIgnoresForeignScopesAndMissingClient(t *testing.T) {
	arbiter, _ := newTestArbiter(&fakeTTS{}, &fakeOutput{})
	if arbiter.Speak("other-session", "Hello", settings.VoiceAlloy) {
		t.Fatalf("expected a foreign scope to be ignored")
	}
	arbiter.NativeStarted("other-session")
	if arbiter.Speaking() {
		t.Fatalf("expected foreign native audio to be ignored")
	}

	withoutClient := newAudioArbiter()
	withoutClient.Open("session-1")
	if withoutClient.Speak("session-1", "Hello", settings.VoiceAlloy) {
		t.Fatalf("expected speak without a client to be ignored")
	}
}

func TestArbiterNativePassthrough(t *testing.T) {
	tts := &fakeTTS{}
	output := &fakeOutput{}
	arbiter, recorder := newTestArbiter(tts, output)

	arbiter.NativeStarted("session-1")
	arbiter.NativeFrame("session-1", []byte{1, 2})
	arbiter.NativeFrame("session-1", []byte{3, 4})
	if !arbiter.Speaking() {
		t.Fatalf("expected native start to set speaking")
	}
	arbiter.NativeStopped("session-1")
	arbiter.wait()

	if arbiter.Speaking() {
		t.Fatalf("expected the playback mark to clear speaking")
	}
	if output.frames() != 2 {
		t.Fatalf("expected native frames to reach the output, got %d", output.frames())
	}
	if len(tts.synthesisCalls()) != 0 {
		t.Fatalf("expected no synthesis on the native path")
	}
	if got := recorder.recorded(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected speaking true then false, got %v", got)
	}
}

func TestArbiterNativeSpeakingLastsUntilPlaybackEnds(t *testing.T) {
	output := &fakeOutput{holdMarks: true}
	arbiter, _ := newTestArbiter(&fakeTTS{}, output)

	arbiter.NativeStarted("session-1")
	arbiter.NativeFrame("session-1", []byte{1, 2})
	arbiter.NativeStopped("session-1")
	arbiter.wait()

	if !arbiter.Speaking() {
		t.Fatalf("expected speaking while queued audio is still playing")
	}
	output.releaseMarks()
	if arbiter.Speaking() {
		t.Fatalf("expected speaking to end once playback finished")
	}
}

func TestArbiterNativeMarkFromOlderStreamIsIgnored(t *testing.T) {
	output := &fakeOutput{holdMarks: true}
	arbiter, _ := newTestArbiter(&fakeTTS{}, output)

	arbiter.NativeStarted("session-1")
	arbiter.NativeFrame("session-1", []byte{1})
	arbiter.NativeStopped("session-1")
	arbiter.wait()
	arbiter.NativeStarted("session-1")

	output.releaseMarks()
	if !arbiter.Speaking() {
		t.Fatalf("expected the newer stream to keep speaking")
	}
}

func TestArbiterInterruptCutsNativeAudio(t *testing.T) {
	output := &fakeOutput{holdMarks: true}
	arbiter, recorder := newTestArbiter(&fakeTTS{}, output)

	arbiter.NativeStarted("session-1")
	arbiter.NativeFrame("session-1", []byte{1, 2})
	arbiter.NativeStopped("session-1")
	arbiter.wait()

	arbiter.Interrupt("other-session")
	if !arbiter.Speaking() {
		t.Fatalf("expected a foreign interrupt to be ignored")
	}

	arbiter.Interrupt("session-1")
	if arbiter.Speaking() {
		t.Fatalf("expected interrupt to end speaking")
	}
	if output.clearCalls() != 1 {
		t.Fatalf("expected interrupt to clear the output once, got %d", output.clearCalls())
	}

	output.releaseMarks()
	if got := recorder.recorded(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected speaking true then false, got %v", got)
	}
}

func TestArbiterNativeFramesDoNotWaitForBlockingOutput(t *testing.T) {
	output := &fakeLegacyOutput{gate: make(chan struct{})}
	arbiter := newAudioArbiter()
	arbiter.output.Set(output)
	arbiter.Open("session-1")

	done := make(chan struct{})
	go func() {
		arbiter.NativeStarted("session-1")
		for range 3 {
			arbiter.NativeFrame("session-1", []byte{1, 2})
		}
		arbiter.NativeStopped("session-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected native frames to be queued without waiting on the output")
	}

	close(output.gate)
	arbiter.wait()
	if !eventually(func() bool { return !arbiter.Speaking() }) {
		t.Fatalf("expected speaking to end after the stream was awaited")
	}
	sent, _, awaits := output.counts()
	if sent != 3 || awaits != 1 {
		t.Fatalf("expected three frames and one await, got %d and %d", sent, awaits)
	}
}

func TestArbiterStreamsToBlockingOutput(t *testing.T) {
	tts := &fakeTTS{}
	output := &fakeLegacyOutput{}
	arbiter := newAudioArbiter()
	arbiter.textToSpeech = tts
	arbiter.output.Set(output)
	arbiter.Open("session-1")

	arbiter.Speak("session-1", "Hi there", settings.VoiceAlloy)
	arbiter.wait()

	if !eventually(func() bool { return !arbiter.Speaking() }) {
		t.Fatalf("expected speaking to end after the clip was awaited")
	}
	sent, _, awaits := output.counts()
	if sent != 1 || awaits != 1 {
		t.Fatalf("expected one chunk and one await, got %d and %d", sent, awaits)
	}
}
