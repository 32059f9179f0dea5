package orchestration

// LiveBuffer accumulates the in-progress text of a single transport item. A
// delta for a different item replaces the content, since the transport starts
// new items without announcing them.
type LiveBuffer struct {
	itemID string
	text   string
}

func (b *LiveBuffer) Ingest(itemID, delta string) {
	if itemID != b.itemID {
		b.itemID = itemID
		b.text = delta
		return
	}
	b.text += delta
}

func (b *LiveBuffer) Reset() {
	b.itemID = ""
	b.text = ""
}

func (b *LiveBuffer) Text() string { return b.text }

// ItemID returns the tracked item, or an empty string when none is tracked.
func (b *LiveBuffer) ItemID() string { return b.itemID }

func (b *LiveBuffer) IsEmpty() bool { return b.text == "" }
