package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/vsurfcode/portfolio-voice/core/realtime"
)

type minimalTransport struct{}

func (minimalTransport) Connect(context.Context, string) error     { return nil }
func (minimalTransport) SendMessage(context.Context, string) error { return nil }
func (minimalTransport) Mute(bool) error                           { return nil }

type closeRecorder struct {
	minimalTransport
	calls *[]string
	err   error
}

type closeCtxTransport struct{ closeRecorder }

func (t closeCtxTransport) Close(context.Context) error {
	*t.calls = append(*t.calls, "Close(ctx)")
	return t.err
}

func (t closeCtxTransport) Disconnect() error {
	*t.calls = append(*t.calls, "Disconnect()")
	return nil
}

type closeTransportOnly struct{ closeRecorder }

func (t closeTransportOnly) Close() error {
	*t.calls = append(*t.calls, "Close()")
	return t.err
}

func (t closeTransportOnly) Disconnect(context.Context) error {
	*t.calls = append(*t.calls, "Disconnect(ctx)")
	return nil
}

type disconnectCtxTransport struct{ closeRecorder }

func (t disconnectCtxTransport) Disconnect(context.Context) error {
	*t.calls = append(*t.calls, "Disconnect(ctx)")
	return t.err
}

type disconnectTransport struct{ closeRecorder }

func (t disconnectTransport) Disconnect() error {
	*t.calls = append(*t.calls, "Disconnect()")
	return t.err
}

type panickingTransport struct{ minimalTransport }

func (panickingTransport) Close() error { panic("socket already gone") }

func TestCloseTransportMethodOrder(t *testing.T) {
	var calls []string
	recorder := closeRecorder{calls: &calls}

	for _, tc := range []struct {
		name      string
		transport realtime.Transport
		expected  string
	}{
		{name: "close with context first", transport: closeCtxTransport{recorder}, expected: "Close(ctx)"},
		{name: "close before disconnect", transport: closeTransportOnly{recorder}, expected: "Close()"},
		{name: "disconnect with context", transport: disconnectCtxTransport{recorder}, expected: "Disconnect(ctx)"},
		{name: "plain disconnect", transport: disconnectTransport{recorder}, expected: "Disconnect()"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			calls = nil
			if err := closeTransport(context.Background(), tc.transport); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(calls) != 1 || calls[0] != tc.expected {
				t.Fatalf("expected only %s to be called, got %v", tc.expected, calls)
			}
		})
	}
}

func TestCloseTransportWithoutCloseMethod(t *testing.T) {
	if err := closeTransport(context.Background(), minimalTransport{}); err != nil {
		t.Fatalf("expected a missing close method not to be an error, got %v", err)
	}
}

func TestCloseTransportReportsFailures(t *testing.T) {
	var calls []string
	cause := errors.New("already closed")

	err := closeTransport(context.Background(), closeCtxTransport{closeRecorder{calls: &calls, err: cause}})
	if !errors.Is(err, cause) {
		t.Fatalf("expected close error to be wrapped, got %v", err)
	}

	if err := closeTransport(context.Background(), panickingTransport{}); err == nil {
		t.Fatalf("expected a panicking close to be reported as an error")
	}
}
