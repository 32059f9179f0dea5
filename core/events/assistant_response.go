package events

const (
	// KindAssistantResponseCreated identifies the start of a response.
	KindAssistantResponseCreated Kind = "assistant_response.created"
	// KindAssistantResponseTextDelta identifies streamed response text.
	KindAssistantResponseTextDelta Kind = "assistant_response.text_delta"
	// KindAssistantResponseDone identifies completion of a response.
	KindAssistantResponseDone Kind = "assistant_response.done"
)

// AssistantResponseCreated marks the start of a new assistant response.
type AssistantResponseCreated struct{ Base }

// NewAssistantResponseCreated creates an assistant response created event.
func NewAssistantResponseCreated() AssistantResponseCreated {
	return AssistantResponseCreated{Base: NewBase(KindAssistantResponseCreated)}
}

// AssistantResponseTextDelta carries an incremental piece of response text.
type AssistantResponseTextDelta struct {
	Base
	ItemID string
	Delta  string
}

// NewAssistantResponseTextDelta creates an assistant response text delta event.
func NewAssistantResponseTextDelta(itemID, delta string) AssistantResponseTextDelta {
	return AssistantResponseTextDelta{Base: NewBase(KindAssistantResponseTextDelta), ItemID: itemID, Delta: delta}
}

// AssistantResponseDone marks completion of the assistant response.
type AssistantResponseDone struct{ Base }

// NewAssistantResponseDone creates an assistant response done event.
func NewAssistantResponseDone() AssistantResponseDone {
	return AssistantResponseDone{Base: NewBase(KindAssistantResponseDone)}
}
