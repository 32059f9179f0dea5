package orchestration

import (
	"time"

	"github.com/vsurfcode/portfolio-voice/core/events"
)

// reconciler folds transport events into the conversation log and the live
// buffers. It is not safe for concurrent use; the session serializes access.
type reconciler struct {
	log       []ConversationMessage
	user      LiveBuffer
	assistant LiveBuffer
	seenItems map[string]struct{}

	now func() time.Time
}

type reconcileResult struct {
	// changed reports whether the rendered transcript may have changed.
	changed bool
	// assistantMessage is set when a finalized assistant message was appended.
	assistantMessage *ConversationMessage
}

func newReconciler() reconciler {
	return reconciler{seenItems: map[string]struct{}{}, now: time.Now}
}

func (r *reconciler) apply(event events.Event) reconcileResult {
	switch e := event.(type) {
	case events.UserTranscriptDelta:
		if e.ItemID == "" {
			return reconcileResult{}
		}
		r.user.Ingest(e.ItemID, e.Delta)
		return reconcileResult{changed: true}

	case events.UserTranscriptCompleted:
		r.user.Reset()
		return reconcileResult{changed: true}

	case events.AssistantResponseCreated, events.AssistantResponseDone:
		r.assistant.Reset()
		return reconcileResult{changed: true}

	case events.AssistantResponseTextDelta:
		if e.ItemID == "" {
			return reconcileResult{}
		}
		r.assistant.Ingest(e.ItemID, e.Delta)
		return reconcileResult{changed: true}

	case events.HistoryItemAdded:
		return r.addHistoryItem(e)
	}

	return reconcileResult{}
}

// addHistoryItem appends a finalized message. Duplicates and items without
// text are dropped before anything is mutated, and only appended items are
// marked seen so a later event carrying the transcript can still land.
func (r *reconciler) addHistoryItem(item events.HistoryItemAdded) reconcileResult {
	if item.ItemID == "" || item.Type != events.ItemTypeMessage {
		return reconcileResult{}
	}
	if item.Role != events.RoleUser && item.Role != events.RoleAssistant {
		return reconcileResult{}
	}
	if _, seen := r.seenItems[item.ItemID]; seen {
		return reconcileResult{}
	}

	text := item.Text()
	if text == "" {
		return reconcileResult{}
	}

	r.seenItems[item.ItemID] = struct{}{}
	message := r.appendMessage(item.Role, text)

	if item.Role == events.RoleUser {
		if r.user.ItemID() == item.ItemID {
			r.user.Reset()
		}
		return reconcileResult{changed: true}
	}

	r.assistant.Reset()
	return reconcileResult{changed: true, assistantMessage: &message}
}

func (r *reconciler) appendMessage(role events.Role, text string) ConversationMessage {
	message := ConversationMessage{Role: role, Content: text, Timestamp: r.now()}
	r.log = append(r.log, message)
	return message
}

func (r *reconciler) reset() {
	r.log = nil
	r.user.Reset()
	r.assistant.Reset()
	r.seenItems = map[string]struct{}{}
}

// transcript renders finalized messages followed by the live user buffer and
// then the live assistant buffer.
func (r *reconciler) transcript() []TranscriptEntry {
	entries := make([]TranscriptEntry, 0, len(r.log)+2)
	for _, message := range r.log {
		entries = append(entries, TranscriptEntry{
			Role:      message.Role,
			Content:   message.Content,
			Timestamp: message.Timestamp,
		})
	}

	if !r.user.IsEmpty() {
		entries = append(entries, TranscriptEntry{Role: events.RoleUser, Content: r.user.Text(), Timestamp: r.now(), Live: true})
	}
	if !r.assistant.IsEmpty() {
		entries = append(entries, TranscriptEntry{Role: events.RoleAssistant, Content: r.assistant.Text(), Timestamp: r.now(), Live: true})
	}

	return entries
}

func (r *reconciler) messages() []ConversationMessage {
	messages := make([]ConversationMessage, len(r.log))
	copy(messages, r.log)
	return messages
}
