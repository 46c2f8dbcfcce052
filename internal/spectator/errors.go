package spectator

import (
	"errors"

	"github.com/signalsfoundry/gridsnake/core"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNoSession indicates no game is attached to the spectator service yet.
	ErrNoSession = errors.New("no game session attached")
	// ErrMalformedSnapshot indicates a snapshot payload could not be decoded.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// ToStatusError maps game errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, core.ErrGameOver):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrNoSession):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrMalformedSnapshot),
		errors.Is(err, core.ErrInvalidConfig):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
