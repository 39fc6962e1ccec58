package server

import (
	"net"

	"github.com/rs/xid"

	"go.minekube.com/mcwire/pkg/ping"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
)

// ReadyEvent is fired once the server accepts connections.
type ReadyEvent struct {
	addr net.Addr
}

// Addr returns the address the server listens on.
func (r *ReadyEvent) Addr() net.Addr { return r.addr }

// Inbound is an accepted client connection.
type Inbound interface {
	// ID is the unique id of the connection.
	ID() xid.ID
	// RemoteAddr is the client's address,
	// resolved from the PROXY header if enabled.
	RemoteAddr() net.Addr
	// Protocol is the protocol version from the handshake.
	Protocol() proto.Protocol
	// VirtualHost is the address and port the client used to connect.
	VirtualHost() net.Addr
}

// HandshakeEvent is fired when a client sent its handshake.
type HandshakeEvent struct {
	inbound   Inbound
	handshake packet.Handshake
	next      proto.State
}

// Connection returns the inbound connection.
func (e *HandshakeEvent) Connection() Inbound { return e.inbound }

// Handshake returns a copy of the received handshake.
func (e *HandshakeEvent) Handshake() packet.Handshake { return e.handshake }

// NextState returns the state the client requested, Status or Login.
func (e *HandshakeEvent) NextState() proto.State { return e.next }

// StatusRequestEvent is fired when a client requested the server status.
// Subscribers may modify or replace the ping response.
type StatusRequestEvent struct {
	inbound Inbound
	ping    *ping.ServerPing
}

// Connection returns the inbound connection.
func (e *StatusRequestEvent) Connection() Inbound { return e.inbound }

// Ping returns the used ping. (pre-initialized from the config)
func (e *StatusRequestEvent) Ping() *ping.ServerPing { return e.ping }

// SetPing sets the ping response to use.
// Setting nil closes the connection without response.
func (e *StatusRequestEvent) SetPing(p *ping.ServerPing) { e.ping = p }
