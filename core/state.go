package orchestration

import "github.com/vsurfcode/portfolio-voice/core/settings"

// State is the lifecycle state of a [Session]. A session only moves
// Disconnected -> Connecting -> Connected -> Disconnected.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// SessionSnapshot is a point-in-time view of a [Session].
type SessionSnapshot struct {
	State         State
	Listening     bool
	Speaking      bool
	AssistantName string
	VoiceSettings settings.VoiceSettings
	Transcript    []TranscriptEntry
	Err           error
}
