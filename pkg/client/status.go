// Package client queries the status of Minecraft servers
// using the server list ping exchange.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"

	"go.minekube.com/mcwire/pkg/netmc"
	"go.minekube.com/mcwire/pkg/ping"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
	"go.minekube.com/mcwire/pkg/proto/phase"
	"go.minekube.com/mcwire/pkg/proto/version"
)

// ErrPongMismatch is returned when the pong does not echo the ping payload.
var ErrPongMismatch = errors.New("pong payload does not match ping")

// Request is a status request to a server.
type Request struct {
	// ServerAddress and Port are sent in the handshake.
	// Servers may use them for virtual hosting.
	ServerAddress string
	Port          uint16
	// Protocol is the protocol version sent in the handshake.
	// Defaults to version.MaximumVersion.
	Protocol proto.Protocol
	// SkipLatency ends the exchange after the status response
	// without sending a ping.
	SkipLatency bool
	// Options of the underlying connection.
	Options netmc.Options
}

// Result is the result of a status exchange.
type Result struct {
	// Ping is the decoded status document.
	Ping *ping.ServerPing
	// Raw is the status document as received.
	Raw string
	// Latency is the round trip time of ping and pong.
	// Zero if Request.SkipLatency was set.
	Latency time.Duration
}

// Status runs the status exchange over transport and closes it when done.
// If ctx is canceled the transport is closed and the pending
// read or write fails.
func Status(ctx context.Context, transport io.ReadWriteCloser, req Request) (*Result, error) {
	if req.Protocol == 0 {
		req.Protocol = version.MaximumVersion.Protocol
	}
	conn := netmc.NewConn(ctx, transport, phase.Client, req.Options)
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	res, err := status(conn, req)
	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", context.Cause(ctx), err)
	}
	return res, err
}

func status(conn *netmc.Conn, req Request) (*Result, error) {
	log := logr.FromContextOrDiscard(conn.Context())

	err := conn.WritePacket(&packet.Handshake{
		ProtocolVersion: int(req.Protocol),
		ServerAddress:   req.ServerAddress,
		Port:            req.Port,
		NextState:       packet.NextStateStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("error writing handshake: %w", err)
	}
	if err = conn.WritePacket(&packet.StatusRequest{}); err != nil {
		return nil, fmt.Errorf("error writing status request: %w", err)
	}

	pc, err := conn.ReadPacket()
	if err != nil {
		return nil, fmt.Errorf("error reading status response: %w", err)
	}
	res, ok := pc.Packet.(*packet.StatusResponse)
	if !ok {
		return nil, fmt.Errorf("received unexpected response: %s, expected %T", pc, res)
	}
	pong, err := ping.Decode(res.Status)
	if err != nil {
		return nil, fmt.Errorf("error decoding status response: %w", err)
	}
	result := &Result{Ping: pong, Raw: res.Status}
	log.V(1).Info("received status", "version", pong.Version.Name, "protocol", pong.Version.Protocol)

	if req.SkipLatency {
		return result, nil
	}

	payload := time.Now().UnixMilli()
	start := time.Now()
	if err = conn.WritePacket(&packet.StatusPing{RandomID: payload}); err != nil {
		return nil, fmt.Errorf("error writing ping: %w", err)
	}
	if pc, err = conn.ReadPacket(); err != nil {
		return nil, fmt.Errorf("error reading pong: %w", err)
	}
	result.Latency = time.Since(start)
	pongPacket, ok := pc.Packet.(*packet.StatusPing)
	if !ok {
		return nil, fmt.Errorf("received unexpected response: %s, expected %T", pc, pongPacket)
	}
	if pongPacket.RandomID != payload {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrPongMismatch, payload, pongPacket.RandomID)
	}
	return result, nil
}
