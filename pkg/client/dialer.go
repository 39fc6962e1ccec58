package client

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go.minekube.com/mcwire/pkg/netmc"
	"go.minekube.com/mcwire/pkg/proto"
	"go.minekube.com/mcwire/pkg/telemetry"
	"go.minekube.com/mcwire/pkg/util/netutil"
)

// Dialer dials servers and runs the status exchange.
// The zero value is ready to use.
type Dialer struct {
	// Timeout bounds dial and exchange. Zero means no timeout.
	Timeout time.Duration
	// SkipLatency skips the ping pong exchange.
	SkipLatency bool
	// Options of the underlying connection.
	Options netmc.Options
	// Metrics records pings if set.
	Metrics *telemetry.Metrics
}

// Status dials addr, a host with optional port defaulting
// to 25565, and returns its status.
func (d *Dialer) Status(ctx context.Context, addr string, protocol proto.Protocol) (res *Result, err error) {
	host, port, err := netutil.SplitHostPort(addr, netutil.DefaultPort)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "client.Status", trace.WithAttributes(
		attribute.String("server.address", host),
		attribute.Int("server.port", int(port)),
		attribute.Int("protocol", int(protocol)),
	))
	start := time.Now()
	defer func() {
		d.Metrics.Ping(start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	return Status(ctx, telemetry.CountConn(conn, d.Metrics), Request{
		ServerAddress: host,
		Port:          port,
		Protocol:      protocol,
		SkipLatency:   d.SkipLatency,
		Options:       d.Options,
	})
}
