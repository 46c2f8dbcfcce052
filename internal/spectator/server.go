package spectator

import (
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type serverOptions struct {
	collector *observability.RPCCollector
	extra     []grpc.ServerOption
}

// ServerOption customises NewServer.
type ServerOption func(*serverOptions)

// WithRPCCollector records request counts and latencies on c.
func WithRPCCollector(c *observability.RPCCollector) ServerOption {
	return func(o *serverOptions) {
		o.collector = c
	}
}

// WithGRPCOptions appends raw grpc.ServerOptions.
func WithGRPCOptions(opts ...grpc.ServerOption) ServerOption {
	return func(o *serverOptions) {
		o.extra = append(o.extra, opts...)
	}
}

// NewServer builds a grpc.Server exposing svc and the standard health service.
func NewServer(svc *Service, log logging.Logger, opts ...ServerOption) *grpc.Server {
	if log == nil {
		log = logging.Noop()
	}
	var o serverOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	interceptors := []grpc.UnaryServerInterceptor{
		RequestLogUnaryServerInterceptor(log),
	}
	if o.collector != nil {
		interceptors = append(interceptors, o.collector.UnaryServerInterceptor())
	}
	interceptors = append(interceptors, TracingUnaryServerInterceptor())

	serverOpts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	}
	serverOpts = append(serverOpts, o.extra...)

	server := grpc.NewServer(serverOpts...)
	server.RegisterService(&ServiceDesc, svc)
	healthpb.RegisterHealthServer(server, svc.Health())
	return server
}
