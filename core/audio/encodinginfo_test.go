package audio

import (
	"testing"
	"time"
)

func TestDefaultEncodingInfoMatchesRealtimePCM(t *testing.T) {
	info := GetDefaultEncodingInfo()

	if info.SampleRate != 24000 {
		t.Fatalf("expected 24000 Hz default, got %d", info.SampleRate)
	}
	if info.Format != EncodingLinear16 {
		t.Fatalf("expected linear16 default, got %q", info.Format)
	}
	if info.IsZero() {
		t.Fatalf("expected default encoding to be non-zero")
	}
}

func TestDuration(t *testing.T) {
	testCases := []struct {
		name     string
		info     EncodingInfo
		bytes    int
		expected time.Duration
	}{
		{name: "one second linear16", info: GetDefaultEncodingInfo(), bytes: 48000, expected: time.Second},
		{name: "half second mulaw", info: EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}, bytes: 4000, expected: 500 * time.Millisecond},
		{name: "unknown format", info: EncodingInfo{SampleRate: 8000, Format: "opus"}, bytes: 4000, expected: 0},
		{name: "zero info", info: EncodingInfo{}, bytes: 4000, expected: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.info.Duration(testCase.bytes); got != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, got)
			}
		})
	}
}

func TestSilenceValue(t *testing.T) {
	if got := (EncodingInfo{Format: EncodingALaw}).SilenceValue(); got != 0x55 {
		t.Fatalf("expected alaw silence 0x55, got %#x", got)
	}
	if got := (EncodingInfo{Format: EncodingMulaw}).SilenceValue(); got != 0xFF {
		t.Fatalf("expected mulaw silence 0xff, got %#x", got)
	}
	if got := (EncodingInfo{Format: EncodingLinear16}).SilenceValue(); got != 0 {
		t.Fatalf("expected linear16 silence 0, got %#x", got)
	}
}
