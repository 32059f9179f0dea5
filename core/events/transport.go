package events

// KindTransportError identifies an error reported by the transport.
const KindTransportError Kind = "transport.error"

// TransportError carries an error reported by the transport after the
// connection was established.
type TransportError struct {
	Base
	Message string
}

// NewTransportError creates a transport error event.
func NewTransportError(message string) TransportError {
	return TransportError{Base: NewBase(KindTransportError), Message: message}
}
