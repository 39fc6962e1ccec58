package proto

import (
	"errors"
	"fmt"
)

// Errors returned by the codec and state machine layers.
// Match them with errors.Is, the concrete error usually wraps
// additional context such as a *PacketError or a transport error.
var (
	ErrMalformedVarInt        = errors.New("malformed varint")
	ErrTruncatedInput         = errors.New("truncated input")
	ErrInvalidUTF8            = errors.New("invalid utf-8 string")
	ErrStringTooLong          = errors.New("string exceeds maximum length")
	ErrFrameTooLarge          = errors.New("frame exceeds maximum size")
	ErrConnectionClosed       = errors.New("connection closed")
	ErrUnknownPacketID        = errors.New("unknown packet id")
	ErrSchemaMismatch         = errors.New("packet does not match schema")
	ErrInvalidHandshakeTarget = errors.New("invalid handshake next state")
	ErrIllegalPacketForState  = errors.New("illegal packet for state")
)

// PacketError is returned for failures attributable to a specific
// packet identity, e.g. an id that is not registered or a packet
// that may not be sent in the current state.
type PacketError struct {
	State     State
	Direction Direction
	ID        PacketID   // -1 when the packet type has no id in this state.
	Type      PacketType // May be nil if the packet was never decoded.
	Err       error
}

func (e *PacketError) Error() string {
	s := fmt.Sprintf("%s %s packet", e.State, e.Direction)
	if e.Type != nil {
		s += " " + e.Type.String()
	}
	if e.ID >= 0 {
		s += " (id " + e.ID.String() + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *PacketError) Unwrap() error { return e.Err }
