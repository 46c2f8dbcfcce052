package spectator

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/gridsnake/model"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client reads snapshots from a remote SpectatorService.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// Dial connects to addr without transport security. The connection is
// established lazily on the first call.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial spectator %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// Snapshot fetches and decodes the current remote snapshot.
func (c *Client) Snapshot(ctx context.Context) (model.Snapshot, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, GetSnapshotMethod, &emptypb.Empty{}, out); err != nil {
		return model.Snapshot{}, err
	}
	return DecodeSnapshot(out)
}

// Serving reports whether the remote game is still running.
func (c *Client) Serving(ctx context.Context) (bool, error) {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
