package orchestration

import (
	"reflect"

	"github.com/vsurfcode/portfolio-voice/core/audio"
)

// audioOutput hides whether local playback reports the end of a clip through
// a blocking AwaitMark (v0) or a mark callback (v1). Playback errors are
// logged and otherwise ignored; a failed frame never ends a session.
type audioOutput struct {
	base audioOutputBase
	v0   AudioOutputV0
	v1   AudioOutputV1
}

func newAudioOutput(client audioOutputBase) *audioOutput {
	audioOutput := audioOutput{}
	audioOutput.Set(client)
	return &audioOutput
}

// Set replaces the configured output client and recomputes version-specific
// capabilities. Nil and typed-nil clients are treated as unconfigured.
func (a *audioOutput) Set(client audioOutputBase) {
	if a == nil {
		return
	}

	a.base = nil
	a.v0 = nil
	a.v1 = nil

	if isNilAudioOutputBase(client) {
		return
	}
	a.base = client

	if v1, ok := client.(AudioOutputV1); ok {
		a.v1 = v1
		return
	}

	if v0, ok := client.(AudioOutputV0); ok {
		a.v0 = v0
	}
}

// isConfigured reports whether a v0 or v1 client is bound. A client that
// implements neither is kept in base but not considered configured.
func (a *audioOutput) isConfigured() bool {
	if a == nil {
		return false
	}

	return a.v0 != nil || a.v1 != nil
}

// Snapshot freezes the routing for one clip so replacing the output while a
// clip plays does not split it across clients.
func (a *audioOutput) Snapshot() *audioOutput {
	if a == nil {
		return a
	}

	return newAudioOutput(a.base)
}

// SendAudio queues a chunk for playback. Without a configured client the
// chunk is dropped.
func (a *audioOutput) SendAudio(audio []byte) {
	var err error
	if a.v1 != nil {
		err = a.v1.SendAudio(audio)
	} else if a.v0 != nil {
		err = a.v0.SendAudio(audio)
	}
	if err != nil {
		logger.Warn("failed to send audio to output", "error", err)
	}
}

// Mark calls callback once everything queued before it has played. Without a
// configured client the callback runs immediately.
func (a *audioOutput) Mark(mark string, callback func(string)) {
	if a.v1 != nil {
		if err := a.v1.Mark(mark, callback); err != nil {
			logger.Warn("failed to mark audio output, ending clip early", "mark", mark, "error", err)
			callback(mark)
		}
	} else if a.v0 != nil {
		go func() {
			if err := a.v0.AwaitMark(); err != nil {
				logger.Warn("failed to await audio mark", "mark", mark, "error", err)
			}
			callback(mark)
		}()
	} else {
		callback(mark)
	}
}

// blocking reports whether SendAudio waits for playback.
func (a *audioOutput) blocking() bool {
	return a.v1 == nil && a.v0 != nil
}

// Clear drops audio that has been queued but not yet played.
func (a *audioOutput) Clear() {
	if a.v1 != nil {
		a.v1.ClearBuffer()
	} else if a.v0 != nil {
		a.v0.ClearBuffer()
	}
}

// EncodingInfo returns the output encoding, or the 24 kHz linear16 default
// when no client is configured.
func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if a.v1 != nil {
		return a.v1.EncodingInfo()
	}
	if a.v0 != nil {
		return a.v0.EncodingInfo()
	}

	return audio.GetDefaultEncodingInfo()
}

// isNilAudioOutputBase detects nil and typed-nil clients.
func isNilAudioOutputBase(client audioOutputBase) bool {
	if client == nil {
		return true
	}

	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
