package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/renamer/internal/types"
)

// Error mapping:
// Unknown packs map to NOT_FOUND.
// Configuration and request validation errors map to INVALID_ARGUMENT.
// Invariant violations during process/unprocess map to INTERNAL.
// Storage errors map to UNAVAILABLE.
// Context timeouts map to DEADLINE_EXCEEDED.

// errStorage wraps failures of the rule store.
var errStorage = errors.New("rule store unavailable")

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, types.ErrUnknownPack):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, types.ErrInvalidRange),
		errors.Is(err, types.ErrInvalidSignature),
		errors.Is(err, types.ErrDuplicatePack),
		errors.Is(err, types.ErrSlotOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrItemDestroyed),
		errors.Is(err, types.ErrCorruptStash),
		errors.Is(err, types.ErrRenameFailed):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, errStorage):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func invalidArgument(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}
