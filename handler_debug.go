//go:build debug

package routines

import (
	"context"

	"go.uber.org/zap"
)

// buildDefaultHandler wires the debug-build default handler: failures are
// logged through a development zap logger. Release builds get a no-op.
func buildDefaultHandler() Handler {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return DiscardHandler
	}
	return func(_ context.Context, f Failure) {
		logger.Error("routine failed",
			zap.String("routine_id", f.RoutineID),
			zap.String("name", f.Name),
			zap.Time("time", f.Time),
			zap.Any("metadata", f.Metadata),
			zap.Error(f.Err),
		)
	}
}
