package packet

import (
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/field"
)

// Values of Handshake.NextState.
const (
	NextStateStatus = 1
	NextStateLogin  = 2
)

// MaxServerAddressLen is the maximum number of characters
// of the handshake's server address.
const MaxServerAddressLen = 255

// https://wiki.vg/Protocol#Handshaking
type Handshake struct {
	ProtocolVersion int
	ServerAddress   string
	Port            uint16
	NextState       int
}

func (h *Handshake) Fields() []proto.Field {
	return []proto.Field{
		field.VarInt(&h.ProtocolVersion),
		field.StringMax(&h.ServerAddress, MaxServerAddressLen),
		field.Uint16(&h.Port),
		field.VarInt(&h.NextState),
	}
}

// NextProtoState returns the connection state the handshake requests.
// The second return value is false if NextState is neither Status nor Login.
func (h *Handshake) NextProtoState() (proto.State, bool) {
	switch h.NextState {
	case NextStateStatus:
		return proto.StatusState, true
	case NextStateLogin:
		return proto.LoginState, true
	}
	return proto.HandshakeState, false
}

var _ proto.Packet = (*Handshake)(nil)
