package netmc

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/codec"
	"go.minekube.com/mcwire/pkg/proto/packet"
	"go.minekube.com/mcwire/pkg/proto/phase"
	"go.minekube.com/mcwire/pkg/proto/state"
)

func pipe(t *testing.T, opts Options) (client, server *Conn) {
	t.Helper()
	a, b := net.Pipe()
	ctx := logr.NewContext(context.Background(), logr.Discard())
	client = NewConn(ctx, a, phase.Client, opts)
	server = NewConn(ctx, b, phase.Server, opts)
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func handshake(next int) *packet.Handshake {
	return &packet.Handshake{ProtocolVersion: 754, ServerAddress: "localhost", Port: 25565, NextState: next}
}

// goWrite writes p from another goroutine since net.Pipe writes block until read.
func goWrite(c *Conn, p proto.Packet) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- c.WritePacket(p) }()
	return ch
}

func TestConn_StatusExchange(t *testing.T) {
	client, server := pipe(t, Options{})

	w := goWrite(client, handshake(packet.NextStateStatus))
	pc, err := server.ReadPacket()
	require.NoError(t, err)
	require.NoError(t, <-w)
	assert.Equal(t, handshake(packet.NextStateStatus), pc.Packet)
	assert.Equal(t, proto.StatusState, client.State())
	assert.Equal(t, proto.StatusState, server.State())

	w = goWrite(client, &packet.StatusRequest{})
	pc, err = server.ReadPacket()
	require.NoError(t, err)
	require.NoError(t, <-w)
	assert.IsType(t, &packet.StatusRequest{}, pc.Packet)

	w = goWrite(server, &packet.StatusResponse{Status: `{"description":"hi"}`})
	pc, err = client.ReadPacket()
	require.NoError(t, err)
	require.NoError(t, <-w)
	assert.Equal(t, `{"description":"hi"}`, pc.Packet.(*packet.StatusResponse).Status)

	w = goWrite(client, &packet.StatusPing{RandomID: 1234})
	pc, err = server.ReadPacket()
	require.NoError(t, err)
	require.NoError(t, <-w)

	w = goWrite(server, pc.Packet)
	pc, err = client.ReadPacket()
	require.NoError(t, err)
	require.NoError(t, <-w)
	assert.Equal(t, &packet.StatusPing{RandomID: 1234}, pc.Packet)

	assert.True(t, client.Done())
	assert.True(t, server.Done())
}

func TestConn_IllegalPacketMakesUnusable(t *testing.T) {
	client, _ := pipe(t, Options{})

	err := client.WritePacket(&packet.StatusRequest{})
	require.ErrorIs(t, err, proto.ErrIllegalPacketForState)
	assert.Equal(t, proto.HandshakeState, client.State())

	err = client.WritePacket(handshake(packet.NextStateStatus))
	require.ErrorIs(t, err, ErrConnUnusable)
	require.ErrorIs(t, err, proto.ErrIllegalPacketForState)
}

func TestConn_InvalidHandshakeTarget(t *testing.T) {
	client, _ := pipe(t, Options{})
	err := client.WritePacket(handshake(5))
	require.ErrorIs(t, err, proto.ErrInvalidHandshakeTarget)
	assert.Equal(t, proto.HandshakeState, client.State())
}

func TestConn_ServerRejectsUnexpectedPacket(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(context.Background(), b, phase.Server, Options{})
	defer server.Close()
	defer a.Close()

	// a status request frame sent before any handshake
	go func() { _, _ = a.Write(codec.Frame([]byte{0x00})) }()
	_, err := server.ReadPacket()
	// id 0x00 is the handshake id but the payload lacks its fields
	require.ErrorIs(t, err, proto.ErrSchemaMismatch)

	_, err = server.ReadPacket()
	require.ErrorIs(t, err, ErrConnUnusable)
}

func TestConn_CloseUnblocksRead(t *testing.T) {
	_, server := pipe(t, Options{})

	errCh := make(chan error, 1)
	go func() {
		_, err := server.ReadPacket()
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, server.Close())
	require.NoError(t, server.Close(), "close is idempotent")

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, proto.ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadPacket did not return after Close")
	}
	assert.True(t, server.Closed())
	assert.Error(t, server.Context().Err())

	_, err := server.ReadPacket()
	require.ErrorIs(t, err, ErrConnUnusable)
}

func TestConn_PeerClose(t *testing.T) {
	client, server := pipe(t, Options{})
	require.NoError(t, client.Close())
	_, err := server.ReadPacket()
	require.ErrorIs(t, err, proto.ErrConnectionClosed)
}

func TestConn_ReadTimeout(t *testing.T) {
	_, server := pipe(t, Options{ReadTimeout: 30 * time.Millisecond})
	start := time.Now()
	_, err := server.ReadPacket()
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	_, err = server.ReadPacket()
	require.ErrorIs(t, err, ErrConnUnusable)
}

func TestConn_FrameTooLarge(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(context.Background(), b, phase.Server, Options{MaxFrameSize: 8})
	defer server.Close()
	defer a.Close()

	go func() { _, _ = a.Write(codec.Frame(make([]byte, 9))) }()
	_, err := server.ReadPacket()
	require.ErrorIs(t, err, proto.ErrFrameTooLarge)
}

func TestConn_RemoteAddr(t *testing.T) {
	client, _ := pipe(t, Options{})
	assert.NotNil(t, client.RemoteAddr())
}

// countingTransport serves a fixed input and counts Read calls.
type countingTransport struct {
	rd    *bytes.Reader
	reads int
}

func (c *countingTransport) Read(b []byte) (int, error) {
	c.reads++
	return c.rd.Read(b)
}
func (c *countingTransport) Write(b []byte) (int, error) { return len(b), nil }
func (c *countingTransport) Close() error                { return nil }

func TestConn_BufferedReads(t *testing.T) {
	payload, err := codec.Marshal(state.Handshake.ServerBound, handshake(packet.NextStateStatus))
	require.NoError(t, err)
	request, err := codec.Marshal(state.Status.ServerBound, &packet.StatusRequest{})
	require.NoError(t, err)
	input := append(codec.Frame(payload), codec.Frame(request)...)

	transport := &countingTransport{rd: bytes.NewReader(input)}
	c := NewConn(context.Background(), transport, phase.Server, Options{})

	pc, err := c.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, handshake(packet.NextStateStatus), pc.Packet)
	pc, err = c.ReadPacket()
	require.NoError(t, err)
	assert.IsType(t, &packet.StatusRequest{}, pc.Packet)

	// both frames arrive with the first read
	assert.Equal(t, 1, transport.reads)
}
