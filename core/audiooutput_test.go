package orchestration

import (
	"testing"
	"time"
)

func TestAudioOutputPrefersCallbackMarks(t *testing.T) {
	output := &fakeOutput{}
	facade := newAudioOutput(output)

	if facade.v1 == nil || facade.v0 != nil {
		t.Fatalf("expected v1 routing for a callback-mark client")
	}

	facade.SendAudio([]byte{1})
	marked := ""
	facade.Mark("end", func(mark string) { marked = mark })
	facade.Clear()

	if output.frames() != 1 || output.clearCalls() != 1 {
		t.Fatalf("expected one frame and one clear, got %d/%d", output.frames(), output.clearCalls())
	}
	if marked != "end" {
		t.Fatalf("expected mark callback to receive the mark, got %q", marked)
	}
}

func TestAudioOutputBridgesAwaitMark(t *testing.T) {
	output := &fakeLegacyOutput{}
	facade := newAudioOutput(output)

	facade.SendAudio([]byte{1})
	done := make(chan string, 1)
	facade.Mark("end", func(mark string) { done <- mark })

	select {
	case mark := <-done:
		if mark != "end" {
			t.Fatalf("expected mark end, got %q", mark)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for the awaited mark")
	}

	if sent, _, awaits := output.counts(); sent != 1 || awaits != 1 {
		t.Fatalf("expected one frame and one await, got %d/%d", sent, awaits)
	}
}

func TestAudioOutputWithoutClient(t *testing.T) {
	var output *fakeOutput
	facade := newAudioOutput(output)

	if facade.isConfigured() || facade.base != nil {
		t.Fatalf("expected typed nil client to leave the facade unconfigured")
	}

	facade.SendAudio([]byte{1})
	facade.Clear()
	called := false
	facade.Mark("end", func(string) { called = true })
	if !called {
		t.Fatalf("expected mark to fire immediately without a client")
	}
	if facade.EncodingInfo().SampleRate != 24000 {
		t.Fatalf("expected default encoding without a client")
	}
}

func TestAudioOutputSnapshotKeepsRouting(t *testing.T) {
	original := &fakeOutput{}
	replacement := &fakeLegacyOutput{}

	facade := newAudioOutput(original)
	snapshot := facade.Snapshot()
	facade.Set(replacement)

	snapshot.SendAudio([]byte{1})
	if original.frames() != 1 {
		t.Fatalf("expected snapshot to keep sending to the original client")
	}
	if sent, _, _ := replacement.counts(); sent != 0 {
		t.Fatalf("expected replacement to receive nothing from the snapshot, got %d", sent)
	}
	if facade.v0 == nil || facade.v1 != nil {
		t.Fatalf("expected facade to route to the replacement after Set")
	}

	var cleared *fakeOutput
	facade.Set(cleared)
	if facade.isConfigured() {
		t.Fatalf("expected typed nil Set to clear the configuration")
	}
}
