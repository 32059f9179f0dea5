package events

import "strings"

// KindHistoryItemAdded identifies a complete conversation item.
const KindHistoryItemAdded Kind = "history.item_added"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ItemTypeMessage is the only history item type that contributes to the
// conversation transcript.
const ItemTypeMessage = "message"

// Content part types as delivered by the transport.
const (
	ContentInputText   = "input_text"
	ContentInputAudio  = "input_audio"
	ContentOutputText  = "output_text"
	ContentOutputAudio = "output_audio"
)

// ContentPart is a single piece of a history item. Text parts carry Text,
// audio parts carry only a Transcript.
type ContentPart struct {
	Type       string
	Text       string
	Transcript string
}

// Value returns the text of the part, falling back to its transcript.
func (p ContentPart) Value() string {
	if p.Text != "" {
		return p.Text
	}
	return p.Transcript
}

// HistoryItemAdded carries a complete conversation item keyed by a stable
// item identifier.
type HistoryItemAdded struct {
	Base
	ItemID  string
	Type    string
	Role    Role
	Content []ContentPart
}

// NewHistoryItemAdded creates a history item added event for a message item.
func NewHistoryItemAdded(itemID string, role Role, content ...ContentPart) HistoryItemAdded {
	return HistoryItemAdded{
		Base:    NewBase(KindHistoryItemAdded),
		ItemID:  itemID,
		Type:    ItemTypeMessage,
		Role:    role,
		Content: content,
	}
}

// Text concatenates all content parts in order and trims the result.
func (h HistoryItemAdded) Text() string {
	var sb strings.Builder
	for _, part := range h.Content {
		sb.WriteString(part.Value())
	}
	return strings.TrimSpace(sb.String())
}
