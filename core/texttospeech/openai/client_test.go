package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vsurfcode/portfolio-voice/core/texttospeech"
)

func TestSynthesizeSendsSpeechRequest(t *testing.T) {
	var received requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != speechPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		_, _ = w.Write([]byte{1, 2, 3, 4})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	audio, err := client.Synthesize(context.Background(), "Hi there", texttospeech.WithVoice("nova"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(audio) != 4 {
		t.Fatalf("expected 4 audio bytes, got %d", len(audio))
	}
	if received.Model != "tts-1-hd" || received.Voice != "nova" || received.Input != "Hi there" {
		t.Fatalf("unexpected request body: %+v", received)
	}
	if received.ResponseFormat != "pcm" || received.Speed != texttospeech.DefaultSpeed {
		t.Fatalf("expected pcm at default speed, got %+v", received)
	}
}

func TestSynthesizeDefaultsToAlloy(t *testing.T) {
	var voice string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body requestBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		voice = body.Voice
	}))
	defer server.Close()

	if _, err := NewClient("k", WithBaseURL(server.URL)).Synthesize(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voice != "alloy" {
		t.Fatalf("expected alloy, got %q", voice)
	}
}

func TestSynthesizeRejectsRealtimeOnlyVoices(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient("k", WithBaseURL(server.URL))
	for _, voice := range []string{"marin", "cedar"} {
		_, err := client.Synthesize(context.Background(), "hello", texttospeech.WithVoice(voice))
		if !errors.Is(err, texttospeech.ErrVoiceNotSupported) {
			t.Fatalf("expected ErrVoiceNotSupported for %s, got %v", voice, err)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestSynthesizeReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := NewClient("k", WithBaseURL(server.URL)).Synthesize(context.Background(), "hello"); err == nil {
		t.Fatalf("expected an error for a non-OK status")
	}
}
