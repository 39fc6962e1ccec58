// Package telemetry provides prometheus metrics and opentelemetry tracing
// for mcwire clients and servers.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "go.minekube.com/mcwire"

// Tracer returns the tracer of the globally registered provider.
// Spans are dropped unless the embedding application installs a provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Handler returns the http handler exposing metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return otelhttp.NewHandler(
		promhttp.HandlerFor(g, promhttp.HandlerOpts{}),
		"metrics",
	)
}

// Serve serves the metrics of g on bind at path until ctx is canceled.
func Serve(ctx context.Context, bind, path string, g prometheus.Gatherer) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, path, g)
}

// ServeListener is like Serve but uses an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, path string, g prometheus.Gatherer) error {
	log := logr.FromContextOrDiscard(ctx).WithName("metrics")
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, Handler(g))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", ln.Addr().String(), "path", path)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
