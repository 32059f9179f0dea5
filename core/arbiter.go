package orchestration

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/vsurfcode/portfolio-voice/core/settings"
	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultSynthesisTimeout bounds a single speech fetch.
const DefaultSynthesisTimeout = 30 * time.Second

// blockingChunkSize is 100ms of 24 kHz linear16 mono audio.
const blockingChunkSize = 4800

// audioArbiter owns local playback. Synthesized clips are fetched and played
// one at a time with the newest request winning; native transport audio is
// queued and played in arrival order by a drain goroutine. Either way it keeps
// a single speaking flag.
//
// Every request carries the scope (session id) it was made for. Requests for
// any scope other than the open one are ignored, so work still in flight from
// a torn-down session can never play.
type audioArbiter struct {
	textToSpeech      TextToSpeech
	output            *audioOutput
	timeout           time.Duration
	onSpeakingChanged func(bool)

	mu         sync.Mutex
	scope      string
	generation uint64
	cancel     context.CancelFunc
	speaking   bool

	native       []nativeItem
	nativeStream uint64
	draining     bool

	inflight sync.WaitGroup
}

func newAudioArbiter() *audioArbiter {
	return &audioArbiter{
		output:  newAudioOutput(nil),
		timeout: DefaultSynthesisTimeout,
	}
}

func (a *audioArbiter) Open(scope string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scope = scope
}

// Release stops playback and closes scope. Other scopes are left alone.
func (a *audioArbiter) Release(scope string) {
	a.mu.Lock()
	if a.scope != scope {
		a.mu.Unlock()
		return
	}
	a.scope = ""
	changed := a.stopLocked()
	a.mu.Unlock()

	a.notify(changed, false)
}

// Stop cancels the current fetch or clip without closing the scope.
func (a *audioArbiter) Stop() {
	a.mu.Lock()
	changed := a.stopLocked()
	a.mu.Unlock()

	a.notify(changed, false)
}

func (a *audioArbiter) stopLocked() bool {
	a.generation++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.native = nil
	a.output.Clear()
	return a.setSpeakingLocked(false)
}

// Speak cancels whatever is playing and starts fetching text. It returns
// false when the request was ignored, either because scope is not open or no
// speech client is configured.
func (a *audioArbiter) Speak(scope, text string, voice settings.Voice) bool {
	a.mu.Lock()
	if a.textToSpeech == nil || scope == "" || scope != a.scope {
		a.mu.Unlock()
		return false
	}

	changed := a.stopLocked()
	generation := a.generation
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	a.cancel = cancel
	output := a.output.Snapshot()
	a.inflight.Add(1)
	a.mu.Unlock()

	a.notify(changed, false)
	go a.play(ctx, cancel, generation, output, text, voice)
	return true
}

func (a *audioArbiter) play(ctx context.Context, cancel context.CancelFunc, generation uint64, output *audioOutput, text string, voice settings.Voice) {
	defer a.inflight.Done()

	ctx, span := tracer.Start(ctx, "speak assistant message")
	defer span.End()
	span.SetAttributes(
		attribute.String("speech.voice", voice.String()),
		attribute.Int("speech.text_length", len(text)),
	)

	clip, err := a.textToSpeech.Synthesize(ctx, text,
		texttospeech.WithVoice(voice.String()),
		texttospeech.WithEncodingInfo(output.EncodingInfo()),
	)
	cancel()
	if err != nil {
		if !a.isCurrent(generation) {
			span.AddEvent("superseded")
			return
		}
		synthesisErr := &SynthesisError{Voice: voice.String(), Err: err}
		span.RecordError(synthesisErr)
		span.SetStatus(codes.Error, synthesisErr.Error())
		logger.Warn("failed to synthesize speech", "error", synthesisErr)
		a.finish(generation)
		return
	}

	a.mu.Lock()
	if generation != a.generation {
		a.mu.Unlock()
		span.AddEvent("superseded")
		return
	}
	changed := a.setSpeakingLocked(true)
	if !output.blocking() {
		output.SendAudio(clip)
	}
	a.mu.Unlock()
	a.notify(changed, true)

	if output.blocking() {
		// blocking outputs write in real time, so the clip goes out in chunks
		// and stops as soon as it is superseded
		for chunk := range slices.Chunk(clip, blockingChunkSize) {
			if !a.isCurrent(generation) {
				span.AddEvent("superseded during playback")
				return
			}
			output.SendAudio(chunk)
		}
	}

	output.Mark(strconv.FormatUint(generation, 10), func(string) { a.finish(generation) })
}

func (a *audioArbiter) finish(generation uint64) {
	a.mu.Lock()
	if generation != a.generation {
		a.mu.Unlock()
		return
	}
	a.cancel = nil
	changed := a.setSpeakingLocked(false)
	a.mu.Unlock()

	a.notify(changed, false)
}

func (a *audioArbiter) isCurrent(generation uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return generation == a.generation
}

// nativeItem is one queued piece of the transport's own audio stream. An
// item with end set closes the stream once everything before it has played.
type nativeItem struct {
	generation uint64
	stream     uint64
	frame      []byte
	end        bool
}

// NativeStarted opens a new native stream and sets speaking.
func (a *audioArbiter) NativeStarted(scope string) {
	a.mu.Lock()
	if scope == "" || scope != a.scope {
		a.mu.Unlock()
		return
	}
	a.nativeStream++
	changed := a.setSpeakingLocked(true)
	a.mu.Unlock()

	a.notify(changed, true)
}

// NativeFrame queues frame for playback. It never blocks on the output.
func (a *audioArbiter) NativeFrame(scope string, frame []byte) {
	a.enqueueNative(scope, nativeItem{frame: frame})
}

// NativeStopped queues the end of the current native stream. Speaking is
// cleared once the output reports that the last queued frame has played.
func (a *audioArbiter) NativeStopped(scope string) {
	a.enqueueNative(scope, nativeItem{end: true})
}

// Interrupt cuts off whatever is playing for scope, typically because the
// user started talking over the assistant.
func (a *audioArbiter) Interrupt(scope string) {
	a.mu.Lock()
	if scope == "" || scope != a.scope {
		a.mu.Unlock()
		return
	}
	changed := a.stopLocked()
	a.mu.Unlock()

	a.notify(changed, false)
}

func (a *audioArbiter) enqueueNative(scope string, item nativeItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if scope == "" || scope != a.scope {
		return
	}
	item.generation = a.generation
	item.stream = a.nativeStream
	a.native = append(a.native, item)
	if a.draining {
		return
	}
	a.draining = true
	a.inflight.Add(1)
	go a.drainNative()
}

// drainNative plays queued native items in order until the queue is empty.
// Items queued before the last stop are dropped.
func (a *audioArbiter) drainNative() {
	defer a.inflight.Done()

	for {
		a.mu.Lock()
		if len(a.native) == 0 {
			a.draining = false
			a.mu.Unlock()
			return
		}
		item := a.native[0]
		a.native = a.native[1:]
		if item.generation != a.generation {
			a.mu.Unlock()
			continue
		}

		switch {
		case item.end:
			a.mu.Unlock()
			a.output.Mark("native-"+strconv.FormatUint(item.stream, 10), func(string) {
				a.finishNative(item.generation, item.stream)
			})
		case a.output.blocking():
			a.mu.Unlock()
			a.output.SendAudio(item.frame)
		default:
			a.output.SendAudio(item.frame)
			a.mu.Unlock()
		}
	}
}

func (a *audioArbiter) finishNative(generation, stream uint64) {
	a.mu.Lock()
	if generation != a.generation || stream != a.nativeStream {
		a.mu.Unlock()
		return
	}
	changed := a.setSpeakingLocked(false)
	a.mu.Unlock()

	a.notify(changed, false)
}

func (a *audioArbiter) Speaking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaking
}

func (a *audioArbiter) setSpeakingLocked(speaking bool) bool {
	if a.speaking == speaking {
		return false
	}
	a.speaking = speaking
	return true
}

func (a *audioArbiter) notify(changed, speaking bool) {
	if changed && a.onSpeakingChanged != nil {
		a.onSpeakingChanged(speaking)
	}
}

// wait blocks until every started fetch and native drain has returned.
func (a *audioArbiter) wait() {
	a.inflight.Wait()
}
