// Package spectator serves read-only game snapshots over gRPC.
//
// The service is described by a hand-written grpc.ServiceDesc and uses the
// well-known Empty and Struct message types, so no generated code is needed.
package spectator

import (
	"context"
	"sync"

	"github.com/signalsfoundry/gridsnake/internal/logging"
	"github.com/signalsfoundry/gridsnake/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "gridsnake.spectator.v1.SpectatorService"
	// GetSnapshotMethod is the full method path of GetSnapshot.
	GetSnapshotMethod = "/" + ServiceName + "/GetSnapshot"
)

// SpectatorServer is the server API for SpectatorService.
type SpectatorServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes SpectatorService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SpectatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSnapshot",
			Handler:    getSnapshotHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gridsnake/spectator/v1/spectator.proto",
}

func getSnapshotHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SpectatorServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetSnapshotMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SpectatorServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// SnapshotSource is anything that can hand out consistent game snapshots.
type SnapshotSource interface {
	Snapshot() model.Snapshot
}

// Service implements SpectatorServer and owns the gRPC health status that
// tracks whether the attached game is still running.
type Service struct {
	mu     sync.RWMutex
	source SnapshotSource

	health *health.Server
	log    logging.Logger
}

// NewService returns a Service reading from source, which may be nil until
// SetSource is called.
func NewService(source SnapshotSource, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	s := &Service{
		health: health.NewServer(),
		log:    log,
	}
	s.SetSource(source)
	return s
}

// SetSource attaches a new snapshot source and marks the service as serving.
func (s *Service) SetSource(source SnapshotSource) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if source != nil {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// MarkGameOver flips the health status to NOT_SERVING. Snapshots of the final
// state remain available.
func (s *Service) MarkGameOver() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s.log.Info(context.Background(), "spectator marked game over")
}

// WatchGameOver calls MarkGameOver once done is closed. It returns early if
// ctx is cancelled first.
func (s *Service) WatchGameOver(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
		s.MarkGameOver()
	case <-ctx.Done():
	}
}

// Health exposes the health server for registration.
func (s *Service) Health() healthpb.HealthServer {
	return s.health
}

// GetSnapshot returns the current snapshot of the attached game.
func (s *Service) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	log := logging.FromContext(ctx, s.log)

	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()
	if source == nil {
		return nil, ToStatusError(ErrNoSession)
	}

	snap := source.Snapshot()
	out, err := EncodeSnapshot(snap)
	if err != nil {
		log.Error(ctx, "encode snapshot failed", logging.Err(err))
		return nil, ToStatusError(err)
	}
	log.Debug(ctx, "served snapshot",
		logging.Uint64("tick", snap.Tick),
		logging.Int("score", snap.Score),
	)
	return out, nil
}
