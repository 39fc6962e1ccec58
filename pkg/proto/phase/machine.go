// Package phase sequences the connection states of the handshake
// and status exchange and decides which packets are legal to send
// or receive at any point.
package phase

import (
	"fmt"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
)

// Role is the side of the connection a Machine runs on.
type Role uint8

const (
	// Client sends server bound packets and receives client bound ones.
	Client Role = iota
	// Server receives server bound packets and sends client bound ones.
	Server
)

func (r Role) String() string {
	if r == Server {
		return "server"
	}
	return "client"
}

// Outbound is the direction of packets sent by the role.
func (r Role) Outbound() proto.Direction {
	if r == Server {
		return proto.ClientBound
	}
	return proto.ServerBound
}

// Inbound is the direction of packets received by the role.
func (r Role) Inbound() proto.Direction { return r.Outbound().Opposite() }

// step is the position within the status exchange.
type step uint8

const (
	awaitRequest  step = iota // server bound StatusRequest
	awaitResponse             // client bound StatusResponse
	awaitPing                 // server bound StatusPing
	awaitPong                 // client bound StatusPing
	done                      // no further status packets
)

// Machine is the state machine of a single connection.
//
// It owns the connection state and only mutates it on successful
// transitions. A Machine is pure and not safe for concurrent use.
type Machine struct {
	role  Role
	state proto.State
	step  step
}

// New returns a Machine in the handshake state.
func New(role Role) *Machine {
	return &Machine{role: role, state: proto.HandshakeState}
}

// State returns the current connection state.
func (m *Machine) State() proto.State { return m.state }

// Role returns the side the machine runs on.
func (m *Machine) Role() Role { return m.role }

// Done reports whether the status exchange is complete.
func (m *Machine) Done() bool { return m.state == proto.StatusState && m.step == done }

// Send validates that p may be sent in the current state and runs write,
// which is expected to put p on the wire. The machine only advances
// if write succeeds. Any error of write is returned as is.
func (m *Machine) Send(p proto.Packet, write func() error) error {
	next, err := m.transition(p, m.role.Outbound())
	if err != nil {
		return err
	}
	if err = write(); err != nil {
		return err
	}
	next.apply(m)
	return nil
}

// Receive validates that p may be received in the current state
// and advances the machine.
func (m *Machine) Receive(p proto.Packet) error {
	next, err := m.transition(p, m.role.Inbound())
	if err != nil {
		return err
	}
	next.apply(m)
	return nil
}

// Check reports whether p could be sent by this machine's role now
// without changing the machine.
func (m *Machine) Check(p proto.Packet) error {
	_, err := m.transition(p, m.role.Outbound())
	return err
}

type transition struct {
	state proto.State
	step  step
}

func (t transition) apply(m *Machine) {
	m.state = t.state
	m.step = t.step
}

// transition computes the successor for a packet moving in direction d.
func (m *Machine) transition(p proto.Packet, d proto.Direction) (transition, error) {
	stay := transition{state: m.state, step: m.step}
	switch m.state {
	case proto.HandshakeState:
		h, ok := p.(*packet.Handshake)
		if !ok || d != proto.ServerBound {
			return stay, m.illegal(p, d)
		}
		next, ok := h.NextProtoState()
		if !ok {
			return stay, &proto.PacketError{
				State:     m.state,
				Direction: d,
				ID:        0x00,
				Type:      proto.TypeOf(p),
				Err:       fmt.Errorf("%w: %d", proto.ErrInvalidHandshakeTarget, h.NextState),
			}
		}
		return transition{state: next, step: awaitRequest}, nil
	case proto.StatusState:
		var want step
		switch p.(type) {
		case *packet.StatusRequest:
			want = awaitRequest
		case *packet.StatusResponse:
			want = awaitResponse
		case *packet.StatusPing:
			if d == proto.ServerBound {
				want = awaitPing
			} else {
				want = awaitPong
			}
		default:
			return stay, m.illegal(p, d)
		}
		if m.step != want || directionOf(want) != d {
			return stay, m.illegal(p, d)
		}
		return transition{state: m.state, step: want + 1}, nil
	}
	// no packets are known in Login and Play
	return stay, m.illegal(p, d)
}

func directionOf(s step) proto.Direction {
	if s == awaitRequest || s == awaitPing {
		return proto.ServerBound
	}
	return proto.ClientBound
}

func (m *Machine) illegal(p proto.Packet, d proto.Direction) error {
	return &proto.PacketError{
		State:     m.state,
		Direction: d,
		ID:        -1,
		Type:      proto.TypeOf(p),
		Err:       proto.ErrIllegalPacketForState,
	}
}
