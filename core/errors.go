package orchestration

import (
	"errors"
	"fmt"

	"github.com/vsurfcode/portfolio-voice/core/credentials"
)

var (
	ErrNotConnected     = errors.New("session not connected")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrAlreadyConnected = errors.New("session already connected")
	ErrConnectAborted   = errors.New("connect aborted by disconnect")
	ErrSessionClosed    = errors.New("session closed")
)

// CredentialError reports that no usable realtime token could be obtained.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("failed to get realtime credentials: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// TransportError reports a failed transport operation, or an error event the
// transport emitted on its own when Op is empty.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error: " + e.Message
	}
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SynthesisError reports a failed speech fetch or playback. It is only ever
// logged.
type SynthesisError struct {
	Voice string
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("failed to synthesize speech with voice %s: %v", e.Voice, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// UserMessage converts an error into the text shown to the visitor.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var credentialErr *CredentialError
	var transportErr *TransportError
	var synthesisErr *SynthesisError

	switch {
	case errors.Is(err, ErrNotConnected):
		return "Please connect first"
	case errors.Is(err, ErrEmptyMessage):
		return "Please enter a message"
	case errors.Is(err, ErrAlreadyConnected):
		return "Already connected"
	case errors.Is(err, ErrConnectAborted):
		return "Connection cancelled"
	case errors.Is(err, ErrSessionClosed):
		return "The voice assistant has been shut down"
	case errors.Is(err, credentials.ErrNoToken):
		return "No token received"
	case errors.As(err, &credentialErr):
		return "Failed to get token: " + credentialErr.Err.Error()
	case errors.As(err, &transportErr):
		switch transportErr.Op {
		case "":
			if transportErr.Message == "" {
				return "Connection error occurred"
			}
			return transportErr.Message
		case opConnect:
			return "Failed to connect. Please check your OpenAI API key."
		case opSend:
			return "Failed to send message"
		case opMute:
			return "Failed to toggle the microphone"
		}
		return transportErr.Error()
	case errors.As(err, &synthesisErr):
		return "Failed to play audio"
	}

	return err.Error()
}

const (
	opConnect = "connect"
	opSend    = "send"
	opMute    = "mute"
)
