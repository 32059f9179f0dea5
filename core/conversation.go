package orchestration

import (
	"time"

	"github.com/vsurfcode/portfolio-voice/core/events"
)

// ConversationMessage is a finalized message. Messages are never modified
// once appended to the conversation log.
type ConversationMessage struct {
	Role      events.Role
	Content   string
	Timestamp time.Time
}

// TranscriptEntry is one renderable line of the transcript. Live entries come
// from in-progress buffers and may still change.
type TranscriptEntry struct {
	Role      events.Role
	Content   string
	Timestamp time.Time
	Live      bool
}
