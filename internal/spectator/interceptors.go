package spectator

import (
	"context"

	"github.com/google/uuid"
	"github.com/signalsfoundry/gridsnake/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const requestIDMetadataKey = "x-request-id"

// RequestLogUnaryServerInterceptor attaches a per-request logger annotated
// with method and request_id. The request id is taken from inbound metadata
// when present and generated otherwise.
func RequestLogUnaryServerInterceptor(base logging.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = logging.Noop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			reqID = firstHeader(md, requestIDMetadataKey)
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}

		reqLog := base.With(
			logging.String("method", info.FullMethod),
			logging.String("request_id", reqID),
		)
		ctx = logging.ContextWithLogger(ctx, reqLog)

		resp, err := handler(ctx, req)
		if err != nil {
			reqLog.Warn(ctx, "request failed", logging.Err(err))
		}
		return resp, err
	}
}

func firstHeader(md metadata.MD, key string) string {
	if md == nil {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
