// Package server answers Minecraft server list pings.
package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/pires/go-proxyproto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robinbraemer/event"
	"github.com/rs/xid"
	"go.minekube.com/common/minecraft/component"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/mcwire/internal/health"
	"go.minekube.com/mcwire/pkg/config"
	"go.minekube.com/mcwire/pkg/internal/addrquota"
	"go.minekube.com/mcwire/pkg/netmc"
	"go.minekube.com/mcwire/pkg/ping"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/proto/packet"
	"go.minekube.com/mcwire/pkg/proto/phase"
	"go.minekube.com/mcwire/pkg/proto/version"
	"go.minekube.com/mcwire/pkg/telemetry"
	"go.minekube.com/mcwire/pkg/util/errs"
	"go.minekube.com/mcwire/pkg/util/favicon"
	"go.minekube.com/mcwire/pkg/util/uuid"
)

// ErrServerAlreadyRun is returned by Start if the server was already started.
var ErrServerAlreadyRun = errors.New("server was already run, create a new one")

// Options are the options for a new Server.
type Options struct {
	// Config must be a valid configuration.
	Config *config.Config
	// EventMgr receives the server's events, defaults to event.Nop.
	EventMgr event.Manager
	// Metrics records connections if set.
	Metrics *telemetry.Metrics
	// Gatherer is served when metrics are enabled in the config.
	// Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server is a status server answering server list pings.
type Server struct {
	log      logr.Logger
	cfg      *config.Config
	event    event.Manager
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
	quota    *addrquota.Quota

	motds   []*component.Text
	favicon favicon.Favicon
	sample  []ping.SamplePlayer

	runOnce atomic.Bool
	ready   atomic.Bool
	active  atomic.Int64
}

// New returns a new Server.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	s := &Server{
		log:      logr.FromContextOrDiscard(ctx).WithName("server"),
		cfg:      opts.Config,
		event:    opts.EventMgr,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
	}
	if s.event == nil {
		s.event = event.Nop
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if q := s.cfg.Quota; q.Enabled {
		s.quota = addrquota.NewQuota(q.OPS, q.Burst, q.MaxEntries)
	}
	if err := s.preInit(); err != nil {
		return nil, err
	}
	return s, nil
}

// preInit loads the status response parts from the config.
func (s *Server) preInit() error {
	c := s.cfg.Status
	for _, m := range c.Motd {
		t, err := ping.ParseText(version.MaximumVersion.Protocol, m)
		if err != nil {
			return fmt.Errorf("error loading status motd %q: %w", m, err)
		}
		s.motds = append(s.motds, t)
	}
	if c.Favicon != "" {
		f, err := favicon.Parse(c.Favicon)
		if err != nil {
			s.log.Info("could not load favicon", "favicon", c.Favicon, "error", err.Error())
		} else {
			s.favicon = f
		}
	}
	for _, name := range c.SamplePlayers {
		s.sample = append(s.sample, ping.SamplePlayer{
			Name: name,
			ID:   uuid.OfflinePlayerUUID(name),
		})
	}
	return nil
}

// Event returns the server's event manager.
func (s *Server) Event() event.Manager { return s.event }

// Ready reports whether the server accepts connections.
func (s *Server) Ready() bool { return s.ready.Load() }

// ActiveConnections returns the number of open connections.
func (s *Server) ActiveConnections() int64 { return s.active.Load() }

// Start runs the server and the enabled health and metrics
// services and blocks until ctx is canceled or one fails.
func (s *Server) Start(ctx context.Context) error {
	if !s.runOnce.CompareAndSwap(false, true) {
		return ErrServerAlreadyRun
	}
	eg, ctx := errgroup.WithContext(ctx)

	if c := s.cfg.Health; c.Enabled {
		run, err := health.New(c.Bind)
		if err != nil {
			return fmt.Errorf("error starting health probe service: %w", err)
		}
		s.log.Info("health probe service running", "addr", c.Bind)
		eg.Go(func() error { return run(ctx, health.Serving(s.Ready)) })
	}
	if c := s.cfg.Metrics; c.Enabled {
		eg.Go(func() error {
			return telemetry.Serve(logr.NewContext(ctx, s.log), c.Bind, c.Path, s.gatherer)
		})
	}
	eg.Go(func() error { return s.listenAndServe(ctx, s.cfg.Bind) })

	return eg.Wait()
}

func (s *Server) listenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
// Open connections are closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.ProxyProtocol {
		ln = &proxyproto.Listener{
			Listener:          ln,
			ReadHeaderTimeout: time.Duration(s.cfg.ConnectionTimeout),
		}
	}
	defer ln.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	s.ready.Store(true)
	defer s.ready.Store(false)
	s.event.Fire(&ReadyEvent{addr: ln.Addr()})
	s.log.Info("listening for connections", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				// Listener was closed
				return nil
			}
			return fmt.Errorf("error accepting new connection: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.HandleConn(ctx, conn)
		}()
	}
}

// HandleConn handles a just-accepted connection that
// has not had any I/O performed on it yet. It blocks until
// the connection is done and closes it.
func (s *Server) HandleConn(ctx context.Context, raw net.Conn) {
	if s.quota.Blocked(raw.RemoteAddr()) {
		_ = raw.Close()
		s.metrics.Connection("rejected")
		s.log.Info("connection exceeded rate limit", "remoteAddr", raw.RemoteAddr().String())
		return
	}
	s.metrics.Connection("accepted")
	defer s.metrics.Open()()
	s.active.Inc()
	defer s.active.Dec()

	id := xid.New()
	log := s.log.WithValues("id", id.String(), "remoteAddr", raw.RemoteAddr().String())
	conn := netmc.NewConn(ctx, telemetry.CountConn(raw, s.metrics), phase.Server, netmc.Options{
		MaxFrameSize: s.cfg.MaxFrameSize,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout),
		WriteTimeout: time.Duration(s.cfg.ConnectionTimeout),
		Logger:       log,
	})
	defer func() { _ = conn.Close() }()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	in := &inbound{id: id, remoteAddr: raw.RemoteAddr()}
	if err := s.serve(log, conn, in); err != nil {
		if errs.IsTimeoutErr(err) {
			s.metrics.Connection("timeout")
			log.V(1).Info("connection timed out", "error", err.Error())
			return
		}
		s.metrics.Connection("error")
		log.V(errs.V(err)).Info("connection closed with error", "error", err.Error())
		return
	}
	log.V(1).Info("connection done")
}

func (s *Server) serve(log logr.Logger, conn *netmc.Conn, in *inbound) error {
	pc, err := s.read(conn)
	if err != nil {
		return fmt.Errorf("error reading handshake: %w", err)
	}
	hs := pc.Packet.(*packet.Handshake) // only packet valid in handshake state
	next, _ := hs.NextProtoState()
	in.protocol = proto.Protocol(hs.ProtocolVersion)
	in.virtualHost = virtualHost(hs.ServerAddress, hs.Port)
	s.metrics.Handshake(next)
	s.event.Fire(&HandshakeEvent{inbound: in, handshake: *hs, next: next})

	if next != proto.StatusState {
		log.Info("closing login connection, only status is served",
			"protocol", version.Protocol(in.protocol).String())
		return nil
	}

	if _, err = s.read(conn); err != nil {
		return fmt.Errorf("error reading status request: %w", err)
	}
	if s.cfg.Status.LogPingRequests {
		log.Info("ping request", "virtualHost", in.virtualHost.String(),
			"protocol", version.Protocol(in.protocol).String())
	}

	e := &StatusRequestEvent{inbound: in, ping: s.newPing(in.protocol)}
	s.event.Fire(e)
	if e.Ping() == nil {
		log.V(1).Info("status response denied by event subscriber")
		return nil
	}
	status, err := e.Ping().Encode()
	if err != nil {
		return fmt.Errorf("error encoding status response: %w", err)
	}
	if err = s.write(conn, &packet.StatusResponse{Status: status}); err != nil {
		return err
	}

	pc, err = s.read(conn)
	if err != nil {
		if errors.Is(err, proto.ErrConnectionClosed) {
			// client does not measure latency
			return nil
		}
		return fmt.Errorf("error reading ping: %w", err)
	}
	p := pc.Packet.(*packet.StatusPing) // only packet valid after the response
	return s.write(conn, &packet.StatusPing{RandomID: p.RandomID})
}

func (s *Server) read(conn *netmc.Conn) (*proto.PacketContext, error) {
	pc, err := conn.ReadPacket()
	if err != nil {
		return nil, err
	}
	s.metrics.Packet(pc.State, pc.Direction)
	return pc, nil
}

func (s *Server) write(conn *netmc.Conn, p proto.Packet) error {
	st := conn.State()
	if err := conn.WritePacket(p); err != nil {
		return err
	}
	s.metrics.Packet(st, proto.ClientBound)
	return nil
}

// newPing returns the configured status response for a client.
func (s *Server) newPing(clientProtocol proto.Protocol) *ping.ServerPing {
	c := s.cfg.Status
	protocol := clientProtocol
	if c.Protocol != 0 {
		protocol = proto.Protocol(c.Protocol)
	}
	var desc *component.Text
	switch len(s.motds) {
	case 0:
		desc = &component.Text{}
	case 1:
		desc = s.motds[0]
	default:
		desc = s.motds[rand.IntN(len(s.motds))]
	}
	return &ping.ServerPing{
		Version: ping.Version{
			Protocol: protocol,
			Name:     c.VersionName,
		},
		Players: &ping.Players{
			Online: c.OnlinePlayers,
			Max:    c.MaxPlayers,
			Sample: s.sample,
		},
		Description: desc,
		Favicon:     s.favicon,
	}
}
