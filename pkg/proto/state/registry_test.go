package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
)

func TestRegistries(t *testing.T) {
	tests := []struct {
		state     proto.State
		direction proto.Direction
		id        proto.PacketID
		packet    proto.Packet
		layout    []proto.FieldKind
	}{
		{proto.HandshakeState, proto.ServerBound, 0x00, &packet.Handshake{},
			[]proto.FieldKind{proto.KindVarInt, proto.KindString, proto.KindUint16, proto.KindVarInt}},
		{proto.StatusState, proto.ServerBound, 0x00, &packet.StatusRequest{}, []proto.FieldKind{}},
		{proto.StatusState, proto.ServerBound, 0x01, &packet.StatusPing{}, []proto.FieldKind{proto.KindInt64}},
		{proto.StatusState, proto.ClientBound, 0x00, &packet.StatusResponse{}, []proto.FieldKind{proto.KindString}},
		{proto.StatusState, proto.ClientBound, 0x01, &packet.StatusPing{}, []proto.FieldKind{proto.KindInt64}},
	}
	for _, tt := range tests {
		r := Lookup(tt.state, tt.direction)
		require.NotNil(t, r)
		assert.Equal(t, tt.state, r.State)
		assert.Equal(t, tt.direction, r.Direction)

		id, ok := r.PacketID(tt.packet)
		require.True(t, ok)
		assert.Equal(t, tt.id, id)

		created := r.CreatePacket(tt.id)
		require.NotNil(t, created)
		assert.Equal(t, proto.TypeOf(tt.packet), proto.TypeOf(created))

		layout, ok := r.Layout(tt.id)
		require.True(t, ok)
		assert.Equal(t, tt.layout, layout)
	}
}

func TestUnregistered(t *testing.T) {
	assert.Nil(t, Status.ServerBound.CreatePacket(0x7F))
	_, ok := Status.ServerBound.Layout(0x7F)
	assert.False(t, ok)
	_, ok = Handshake.ServerBound.PacketID(&packet.StatusRequest{})
	assert.False(t, ok)
	assert.Empty(t, Handshake.ClientBound.PacketIDs)
	assert.Empty(t, Login.ServerBound.PacketIDs)
	assert.Empty(t, Login.ClientBound.PacketIDs)
	assert.Nil(t, Of(proto.State(42)))
	assert.Nil(t, Lookup(proto.State(42), proto.ServerBound))
}

func TestRegister_Duplicates(t *testing.T) {
	r := NewPacketRegistry(proto.StatusState, proto.ServerBound)
	r.Register(&packet.StatusRequest{}, 0x00)
	assert.Panics(t, func() { r.Register(&packet.StatusPing{}, 0x00) })
	assert.Panics(t, func() { r.Register(&packet.StatusRequest{}, 0x05) })
	assert.Panics(t, func() { r.Register(&packet.StatusPing{}, -1) })
}
