package events

import "time"

type Kind string

// Event is a single normalized notification emitted by a realtime transport.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

// String returns the event kind so events can be used directly as span or
// log attributes.
func (b Base) String() string {
	return string(b.kind)
}
