package state

import (
	"fmt"
	"reflect"
	"slices"

	"go.minekube.com/mcwire/pkg/proto"
)

// Registry stores server/client bound packets of a connection state.
type Registry struct {
	proto.State
	ServerBound *PacketRegistry
	ClientBound *PacketRegistry
}

func NewRegistry(state proto.State) *Registry {
	return &Registry{
		State:       state,
		ServerBound: NewPacketRegistry(state, proto.ServerBound),
		ClientBound: NewPacketRegistry(state, proto.ClientBound),
	}
}

// PacketRegistry maps the packet ids of one state and direction
// to packet types and their field layout.
type PacketRegistry struct {
	State       proto.State                         // The state the registered packets are valid in.
	Direction   proto.Direction                     // The direction the registered packets are send to.
	PacketIDs   map[proto.PacketID]proto.PacketType // Gets packet type by packet id.
	PacketTypes map[proto.PacketType]proto.PacketID // Gets packet id by packet type.
	layouts     map[proto.PacketID][]proto.FieldKind
}

func NewPacketRegistry(state proto.State, direction proto.Direction) *PacketRegistry {
	return &PacketRegistry{
		State:       state,
		Direction:   direction,
		PacketIDs:   map[proto.PacketID]proto.PacketType{},
		PacketTypes: map[proto.PacketType]proto.PacketID{},
		layouts:     map[proto.PacketID][]proto.FieldKind{},
	}
}

// Register maps packetOf's type to id.
// It panics if the id or the type is already registered.
func (r *PacketRegistry) Register(packetOf proto.Packet, id proto.PacketID) {
	packetType := proto.TypeOf(packetOf)
	if id < 0 {
		panic(fmt.Sprintf("Can not register packet type %T with negative id %d", packetOf, id))
	}
	if existing, ok := r.PacketIDs[id]; ok {
		panic(fmt.Sprintf("Can not register packet type %T with id %s for %s %s "+
			"because %s is already registered", packetOf, id, r.State, r.Direction, existing))
	}
	if _, ok := r.PacketTypes[packetType]; ok {
		panic(fmt.Sprintf("%T is already registered for %s %s", packetOf, r.State, r.Direction))
	}
	r.PacketIDs[id] = packetType
	r.PacketTypes[packetType] = id
	r.layouts[id] = proto.Layout(reflect.New(packetType).Interface().(proto.Packet))
}

// PacketID gets the packet id by the registered packet type.
func (r *PacketRegistry) PacketID(of proto.Packet) (id proto.PacketID, found bool) {
	id, found = r.PacketTypes[proto.TypeOf(of)]
	return
}

// CreatePacket returns a new zero valued instance of the type
// of the mapped packet id or nil if not found.
func (r *PacketRegistry) CreatePacket(id proto.PacketID) proto.Packet {
	packetType, ok := r.PacketIDs[id]
	if !ok {
		return nil
	}
	p, _ := reflect.New(packetType).Interface().(proto.Packet)
	return p
}

// Layout returns the ordered field kinds registered for id.
func (r *PacketRegistry) Layout(id proto.PacketID) ([]proto.FieldKind, bool) {
	l, ok := r.layouts[id]
	return slices.Clone(l), ok
}

// FromDirection returns the packet registry of state for direction.
func FromDirection(direction proto.Direction, state *Registry) *PacketRegistry {
	if direction == proto.ServerBound {
		return state.ServerBound
	}
	return state.ClientBound
}
