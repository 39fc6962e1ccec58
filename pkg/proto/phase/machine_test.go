package phase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
)

func ok() error { return nil }

func statusHandshake() *packet.Handshake {
	return &packet.Handshake{ProtocolVersion: 754, ServerAddress: "localhost", Port: 25565, NextState: packet.NextStateStatus}
}

func TestClient_StatusExchange(t *testing.T) {
	m := New(Client)
	assert.Equal(t, proto.HandshakeState, m.State())

	require.NoError(t, m.Send(statusHandshake(), ok))
	assert.Equal(t, proto.StatusState, m.State())

	require.NoError(t, m.Send(&packet.StatusRequest{}, ok))
	require.NoError(t, m.Receive(&packet.StatusResponse{Status: "{}"}))
	assert.False(t, m.Done())
	require.NoError(t, m.Send(&packet.StatusPing{RandomID: 1}, ok))
	require.NoError(t, m.Receive(&packet.StatusPing{RandomID: 1}))
	assert.True(t, m.Done())
	assert.Equal(t, proto.StatusState, m.State())

	// nothing is legal after the pong
	require.ErrorIs(t, m.Send(&packet.StatusRequest{}, ok), proto.ErrIllegalPacketForState)
	require.ErrorIs(t, m.Send(&packet.StatusPing{}, ok), proto.ErrIllegalPacketForState)
}

func TestServer_StatusExchange(t *testing.T) {
	m := New(Server)
	require.NoError(t, m.Receive(statusHandshake()))
	require.NoError(t, m.Receive(&packet.StatusRequest{}))
	require.NoError(t, m.Send(&packet.StatusResponse{Status: "{}"}, ok))
	require.NoError(t, m.Receive(&packet.StatusPing{RandomID: 7}))
	require.NoError(t, m.Send(&packet.StatusPing{RandomID: 7}, ok))
	assert.True(t, m.Done())
}

func TestLogin(t *testing.T) {
	m := New(Client)
	h := statusHandshake()
	h.NextState = packet.NextStateLogin
	require.NoError(t, m.Send(h, ok))
	assert.Equal(t, proto.LoginState, m.State())

	require.ErrorIs(t, m.Send(&packet.StatusRequest{}, ok), proto.ErrIllegalPacketForState)
	require.ErrorIs(t, m.Receive(&packet.StatusResponse{}), proto.ErrIllegalPacketForState)
	assert.Equal(t, proto.LoginState, m.State())
}

func TestStatusRequestInHandshake(t *testing.T) {
	m := New(Client)
	written := false
	err := m.Send(&packet.StatusRequest{}, func() error { written = true; return nil })
	require.ErrorIs(t, err, proto.ErrIllegalPacketForState)
	assert.False(t, written, "nothing must be written for an illegal packet")
	assert.Equal(t, proto.HandshakeState, m.State())

	var pErr *proto.PacketError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, proto.HandshakeState, pErr.State)
	assert.Equal(t, proto.ServerBound, pErr.Direction)
}

func TestInvalidHandshakeTarget(t *testing.T) {
	for _, next := range []int{0, 3, -1, 255} {
		m := New(Client)
		h := statusHandshake()
		h.NextState = next
		written := false
		err := m.Send(h, func() error { written = true; return nil })
		require.ErrorIs(t, err, proto.ErrInvalidHandshakeTarget)
		assert.False(t, written)
		assert.Equal(t, proto.HandshakeState, m.State())

		srv := New(Server)
		require.ErrorIs(t, srv.Receive(h), proto.ErrInvalidHandshakeTarget)
		assert.Equal(t, proto.HandshakeState, srv.State())
	}
}

func TestFailedWriteDoesNotAdvance(t *testing.T) {
	boom := errors.New("broken pipe")
	m := New(Client)
	err := m.Send(statusHandshake(), func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, proto.HandshakeState, m.State())

	require.NoError(t, m.Send(statusHandshake(), ok))
	err = m.Send(&packet.StatusRequest{}, func() error { return boom })
	require.ErrorIs(t, err, boom)
	// the request may be sent again
	require.NoError(t, m.Send(&packet.StatusRequest{}, ok))
}

func TestOutOfOrder(t *testing.T) {
	tests := []struct {
		name string
		run  func(m *Machine) error
	}{
		{"client pings before request", func(m *Machine) error {
			return m.Send(&packet.StatusPing{}, ok)
		}},
		{"client receives response before request", func(m *Machine) error {
			return m.Receive(&packet.StatusResponse{})
		}},
		{"client sends response", func(m *Machine) error {
			return m.Send(&packet.StatusResponse{}, ok)
		}},
		{"client receives handshake", func(m *Machine) error {
			return m.Receive(statusHandshake())
		}},
		{"client sends second handshake", func(m *Machine) error {
			return m.Send(statusHandshake(), ok)
		}},
		{"client receives pong before ping", func(m *Machine) error {
			if err := m.Send(&packet.StatusRequest{}, ok); err != nil {
				return err
			}
			if err := m.Receive(&packet.StatusResponse{}); err != nil {
				return err
			}
			return m.Receive(&packet.StatusPing{})
		}},
		{"client sends request twice", func(m *Machine) error {
			if err := m.Send(&packet.StatusRequest{}, ok); err != nil {
				return err
			}
			return m.Send(&packet.StatusRequest{}, ok)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Client)
			require.NoError(t, m.Send(statusHandshake(), ok))
			before := *m
			err := tt.run(m)
			require.ErrorIs(t, err, proto.ErrIllegalPacketForState)
			assert.Equal(t, proto.StatusState, m.State())
			if tt.name != "client receives pong before ping" && tt.name != "client sends request twice" {
				assert.Equal(t, before, *m)
			}
		})
	}
}

func TestServer_RejectsClientBoundInHandshake(t *testing.T) {
	m := New(Server)
	require.ErrorIs(t, m.Send(&packet.StatusResponse{}, ok), proto.ErrIllegalPacketForState)
	require.ErrorIs(t, m.Receive(&packet.StatusRequest{}), proto.ErrIllegalPacketForState)
	require.ErrorIs(t, m.Send(statusHandshake(), ok), proto.ErrIllegalPacketForState)
	assert.Equal(t, proto.HandshakeState, m.State())
}

func TestCheck(t *testing.T) {
	m := New(Client)
	require.NoError(t, m.Check(statusHandshake()))
	require.ErrorIs(t, m.Check(&packet.StatusRequest{}), proto.ErrIllegalPacketForState)
	assert.Equal(t, proto.HandshakeState, m.State())
}

func TestRole(t *testing.T) {
	assert.Equal(t, proto.ServerBound, Client.Outbound())
	assert.Equal(t, proto.ClientBound, Client.Inbound())
	assert.Equal(t, proto.ClientBound, Server.Outbound())
	assert.Equal(t, proto.ServerBound, Server.Inbound())
	assert.Equal(t, "server", Server.String())
}
