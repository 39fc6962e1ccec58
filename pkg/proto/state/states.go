package state

import (
	"go.minekube.com/mcwire/pkg/proto"
	p "go.minekube.com/mcwire/pkg/proto/packet"
)

// The registries storing the packets for a connection state.
//
// Login and Play are valid states to be in,
// but no packets are registered for them.
var (
	Handshake = NewRegistry(proto.HandshakeState)
	Status    = NewRegistry(proto.StatusState)
	Login     = NewRegistry(proto.LoginState)
	Play      = NewRegistry(proto.PlayState)
)

func init() {
	Handshake.ServerBound.Register(&p.Handshake{}, 0x00)

	Status.ServerBound.Register(&p.StatusRequest{}, 0x00)
	Status.ServerBound.Register(&p.StatusPing{}, 0x01)

	Status.ClientBound.Register(&p.StatusResponse{}, 0x00)
	Status.ClientBound.Register(&p.StatusPing{}, 0x01)
}

// Of returns the registry of a connection state
// or nil if the state is unknown.
func Of(s proto.State) *Registry {
	switch s {
	case proto.HandshakeState:
		return Handshake
	case proto.StatusState:
		return Status
	case proto.LoginState:
		return Login
	case proto.PlayState:
		return Play
	}
	return nil
}

// Lookup returns the packet registry for the state and direction
// or nil if the state is unknown.
func Lookup(s proto.State, direction proto.Direction) *PacketRegistry {
	r := Of(s)
	if r == nil {
		return nil
	}
	return FromDirection(direction, r)
}
