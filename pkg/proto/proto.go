// Package proto holds the edition agnostic types of the length-prefixed,
// VarInt framed Minecraft Java wire protocol: packets, their identity
// (state, direction, id) and the error taxonomy shared by the codec layers.
package proto

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
)

// Packet is implemented by every protocol packet.
//
// A packet does not encode itself. It exposes its members as an ordered
// list of typed fields, which is its schema, and the codec serializes
// those fields in the declared order.
// The returned fields must be bound to the receiver's members so that
// decoding into them populates the packet.
type Packet interface {
	Fields() []Field
}

// Field is a single wire-encoded member of a packet.
type Field interface {
	// Kind returns the wire type of the field.
	Kind() FieldKind
	// Encode writes the bound value to wr.
	Encode(wr io.Writer) error
	// Decode reads a value from rd into the bound member.
	Decode(rd io.Reader) error
}

// FieldKind is the wire type of a packet field.
type FieldKind uint8

// Supported field kinds.
const (
	KindBool FieldKind = iota + 1
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindVarInt
	KindVarLong
	KindString
	KindBytes
	KindUUID
	KindPosition
	KindAngle
)

var kindNames = map[FieldKind]string{
	KindBool:     "Boolean",
	KindInt8:     "Byte",
	KindUint8:    "UnsignedByte",
	KindInt16:    "Short",
	KindUint16:   "UnsignedShort",
	KindInt32:    "Int",
	KindInt64:    "Long",
	KindFloat32:  "Float",
	KindFloat64:  "Double",
	KindVarInt:   "VarInt",
	KindVarLong:  "VarLong",
	KindString:   "String",
	KindBytes:    "ByteArray",
	KindUUID:     "UUID",
	KindPosition: "Position",
	KindAngle:    "Angle",
}

// String implements fmt.Stringer.
func (k FieldKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownKind(" + strconv.Itoa(int(k)) + ")"
}

// PacketContext carries context information for a
// received packet or packet that is about to be sent.
type PacketContext struct {
	Direction Direction // The direction the packet is bound to.
	State     State     // The connection state the packet was decoded in.
	PacketID  PacketID  // The ID of the packet, is always set.

	// Packet is the decoded packet, never partially filled.
	Packet Packet

	// The packet id + data exactly as received in the frame's payload.
	Payload []byte // Empty when encoding.

	// Size is the total number of bytes read from the transport
	// including the frame's length prefix.
	Size int
}

// KnownPacket reports whether the context carries a decoded packet.
func (c *PacketContext) KnownPacket() bool {
	return c != nil && c.Packet != nil
}

// String implements fmt.Stringer.
func (c *PacketContext) String() string {
	return fmt.Sprintf("PacketContext:direction=%s,state=%s,"+
		"KnownPacket=%t,PacketID=%s,PacketType=%s,Payloadlen=%d",
		c.Direction, c.State, c.KnownPacket(), c.PacketID,
		reflect.TypeOf(c.Packet), len(c.Payload))
}

// PacketID identifies a packet within a state and direction.
type PacketID int

// String implements fmt.Stringer.
func (id PacketID) String() string {
	return fmt.Sprintf("%#02x", int(id))
}

// Direction is the direction a packet is bound to.
//   - Receiving a packet from a client is ServerBound.
//   - Receiving a packet from a server is ClientBound.
//   - Sending a packet to a client is ClientBound.
//   - Sending a packet to a server is ServerBound.
type Direction uint8

// Available packet bound directions.
const (
	ClientBound Direction = iota // A packet is bound to a client.
	ServerBound                  // A packet is bound to a server.
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case ServerBound:
		return "ServerBound"
	case ClientBound:
		return "ClientBound"
	}
	return "UnknownBound"
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == ServerBound {
		return ClientBound
	}
	return ServerBound
}

// State is the negotiated phase of a connection
// and gates which packets are valid.
type State int

// States the connection can be in.
const (
	HandshakeState State = iota
	StatusState
	LoginState
	PlayState
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StatusState:
		return "Status"
	case HandshakeState:
		return "Handshake"
	case LoginState:
		return "Login"
	case PlayState:
		return "Play"
	}
	return "UnknownState"
}

// Version is a named protocol version.
type Version struct {
	Protocol          // The protocol number of the version.
	Names    []string // The names in this protocol version (at least one).
}

// FirstName returns the user-friendly name of
// the version this protocol was introduced in.
func (v *Version) FirstName() string {
	if len(v.Names) == 0 {
		return ""
	}
	return v.Names[0]
}

// LastName returns the user-friendly name of
// the last version of this protocol.
func (v *Version) LastName() string {
	if len(v.Names) == 0 {
		return ""
	}
	return v.Names[len(v.Names)-1]
}

// String returns the user-friendly name of this protocol version.
// If this version has multiple names it returns {first}-{last} version.
func (v Version) String() string {
	if len(v.Names) > 1 {
		return fmt.Sprintf("%s-%s", v.FirstName(), v.LastName())
	}
	return v.FirstName()
}

// Protocol is a protocol version number as sent in the handshake.
type Protocol int

// String implements fmt.Stringer.
func (p Protocol) String() string {
	return strconv.Itoa(int(p))
}

// GreaterEqual is true when this Protocol is
// greater or equal then another Version's Protocol.
func (p Protocol) GreaterEqual(then *Version) bool {
	return p >= then.Protocol
}

// PacketType is the non-pointer reflect.Type of a packet.
// Use TypeOf helper function to for convenience.
type PacketType reflect.Type

// TypeOf returns a non-pointer type of p or nil if p is nil.
func TypeOf(p Packet) PacketType {
	t := reflect.TypeOf(p)
	if t == nil {
		return nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Layout returns the ordered field kinds of a packet.
func Layout(p Packet) []FieldKind {
	fields := p.Fields()
	kinds := make([]FieldKind, len(fields))
	for i, f := range fields {
		kinds[i] = f.Kind()
	}
	return kinds
}
