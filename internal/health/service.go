// Package health serves the grpc health check protocol
// (https://godoc.org/google.golang.org/grpc/health/grpc_health_v1).
package health

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	rpc "google.golang.org/grpc/health/grpc_health_v1"
)

// CheckFn reports the current serving status.
type CheckFn func(ctx context.Context) (*rpc.HealthCheckResponse, error)

// New listens on addr and returns the func serving health checks until ctx is canceled.
func New(addr string) (run func(ctx context.Context, checkFn CheckFn) error, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return Serve(ln), nil
}

// Serve returns the func serving health checks on ln until ctx is canceled.
func Serve(ln net.Listener) func(ctx context.Context, checkFn CheckFn) error {
	return func(ctx context.Context, checkFn CheckFn) error {
		s := grpc.NewServer(grpc.ConnectionTimeout(time.Second * 3))
		rpc.RegisterHealthServer(s, &server{checkFn: checkFn})
		go func() {
			<-ctx.Done()
			s.Stop()
		}()
		if err := s.Serve(ln); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
}

// Serving returns a CheckFn that reports SERVING while ready returns true.
func Serving(ready func() bool) CheckFn {
	return func(context.Context) (*rpc.HealthCheckResponse, error) {
		status := rpc.HealthCheckResponse_NOT_SERVING
		if ready() {
			status = rpc.HealthCheckResponse_SERVING
		}
		return &rpc.HealthCheckResponse{Status: status}, nil
	}
}

type server struct {
	rpc.UnimplementedHealthServer
	checkFn CheckFn
}

func (s *server) Check(ctx context.Context, _ *rpc.HealthCheckRequest) (*rpc.HealthCheckResponse, error) {
	return s.checkFn(ctx)
}
