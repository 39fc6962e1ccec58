// Package netmc owns a single protocol connection: its transport,
// packet codec and handshake state machine.
package netmc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/atomic"

	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/codec"
	"go.minekube.com/mcwire/pkg/proto/phase"
	"go.minekube.com/mcwire/pkg/proto/state"
)

// ErrConnUnusable is returned by a Conn after any previous
// read or write failed. It wraps the first error.
var ErrConnUnusable = errors.New("connection is unusable")

// Options configure a Conn. The zero value is ready to use.
type Options struct {
	// MaxFrameSize limits the length of received frames.
	// Defaults to codec.DefaultMaxFrameSize.
	MaxFrameSize int
	// ReadTimeout and WriteTimeout are applied as deadline before every
	// read and write if the transport supports deadlines. Zero means none.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Logger defaults to the logger of the context passed to NewConn.
	Logger logr.Logger
}

// Conn is a protocol connection of a client or server.
// The connection is unusable after Close was called or any
// error was returned and must be recreated.
//
// A Conn is driven by one goroutine, only Close and Context
// may be called concurrently.
type Conn struct {
	log  logr.Logger
	rwc  io.ReadWriteCloser
	opts Options
	enc  *codec.Encoder
	dec  *codec.Decoder

	ctx       context.Context
	cancelCtx context.CancelFunc
	closeOnce sync.Once
	closed    atomic.Bool

	mu      sync.Mutex // protects following fields
	machine *phase.Machine
	broken  error
}

// NewConn returns a new Conn in the handshake state on top of transport.
// The role determines the direction of written and read packets.
func NewConn(ctx context.Context, transport io.ReadWriteCloser, role phase.Role, opts Options) *Conn {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.FromContextOrDiscard(ctx)
	}
	log = log.WithName(role.String())
	ctx, cancel := context.WithCancel(logr.NewContext(ctx, log))
	dec := codec.NewDecoder(bufio.NewReader(transport), role.Inbound(), log)
	dec.SetMaxFrameSize(opts.MaxFrameSize)
	return &Conn{
		log:       log,
		rwc:       transport,
		opts:      opts,
		enc:       codec.NewEncoder(transport, role.Outbound(), log),
		dec:       dec,
		ctx:       ctx,
		cancelCtx: cancel,
		machine:   phase.New(role),
	}
}

// Context returns the context of the connection.
// This Context is canceled on Close.
func (c *Conn) Context() context.Context { return c.ctx }

// State returns the current state of the connection.
func (c *Conn) State() proto.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Done reports whether the status exchange completed.
func (c *Conn) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Done()
}

// RemoteAddr returns the transport's remote address
// or nil if the transport is not a net.Conn.
func (c *Conn) RemoteAddr() net.Addr {
	if nc, ok := c.rwc.(net.Conn); ok {
		return nc.RemoteAddr()
	}
	return nil
}

// Closed returns true if the connection is closed.
func (c *Conn) Closed() bool { return c.closed.Load() }

// Close closes the connection and the transport, if not already.
// It is okay to call this method multiple times. A blocked
// ReadPacket returns an error wrapping proto.ErrConnectionClosed.
func (c *Conn) Close() (err error) {
	err = net.ErrClosed
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancelCtx()
		err = c.rwc.Close()
	})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// WritePacket validates p against the connection state, writes it
// and advances the state. The connection is unusable after an error.
func (c *Conn) WritePacket(p proto.Packet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(); err != nil {
		return err
	}
	before := c.machine.State()
	err := c.machine.Send(p, func() error {
		type writeDeadliner interface{ SetWriteDeadline(time.Time) error }
		if wd, ok := c.rwc.(writeDeadliner); ok && c.opts.WriteTimeout > 0 {
			if err := wd.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
				return err
			}
		}
		_, err := c.enc.WritePacket(p)
		return err
	})
	if err != nil {
		return c.fail(fmt.Errorf("error writing %T: %w", p, err))
	}
	c.syncState(before)
	return nil
}

// ReadPacket reads the next packet, validates it against the connection
// state and advances the state. It blocks until a packet was read or
// the transport fails. The connection is unusable after an error.
func (c *Conn) ReadPacket() (*proto.PacketContext, error) {
	c.mu.Lock()
	err := c.usable()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	type readDeadliner interface{ SetReadDeadline(time.Time) error }
	if rd, ok := c.rwc.(readDeadliner); ok && c.opts.ReadTimeout > 0 {
		if err = rd.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			return nil, c.fail(err)
		}
	}

	pc, err := c.dec.Decode()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.closed.Load() && !errors.Is(err, proto.ErrConnectionClosed) {
			err = fmt.Errorf("%w: %w", proto.ErrConnectionClosed, err)
		}
		return nil, c.fail(err)
	}
	before := c.machine.State()
	if err = c.machine.Receive(pc.Packet); err != nil {
		return nil, c.fail(err)
	}
	c.syncState(before)
	return pc, nil
}

// usable must be called with mu held.
func (c *Conn) usable() error {
	if c.broken != nil {
		return fmt.Errorf("%w: %w", ErrConnUnusable, c.broken)
	}
	if c.closed.Load() {
		return fmt.Errorf("%w: %w", ErrConnUnusable, proto.ErrConnectionClosed)
	}
	return nil
}

// fail marks the connection unusable, must be called with mu held.
func (c *Conn) fail(err error) error {
	if c.broken == nil {
		c.broken = err
	}
	c.log.V(1).Info("connection failed", "error", err)
	return err
}

// syncState switches the codec registries after a state transition,
// must be called with mu held.
func (c *Conn) syncState(before proto.State) {
	now := c.machine.State()
	if now == before {
		return
	}
	reg := state.Of(now)
	c.enc.SetState(reg)
	c.dec.SetState(reg)
	c.log.V(1).Info("switched state", "from", before, "to", now)
}
