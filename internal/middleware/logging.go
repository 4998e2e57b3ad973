package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// tripScoped is implemented by request messages that address one trip.
type tripScoped interface {
	GetTripID() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, trip, token subject and duration. Client errors are
// logged at warn level, anything without a Connect code at error level.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{slog.String("procedure", req.Spec().Procedure)}
			if msg, ok := req.Any().(tripScoped); ok && msg.GetTripID() != "" {
				attrs = append(attrs, slog.String("trip_id", msg.GetTripID()))
			}
			if subject := GetSubject(ctx); subject != "" {
				attrs = append(attrs, slog.String("subject", subject))
			}
			attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))

			level, message := slog.LevelInfo, "RPC ok"
			var connectErr *connect.Error
			switch {
			case err == nil:
			case errors.As(err, &connectErr):
				level, message = slog.LevelWarn, "RPC error"
				attrs = append(attrs, slog.String("code", connectErr.Code().String()), slog.String("error", connectErr.Message()))
			default:
				level, message = slog.LevelError, "RPC error"
				attrs = append(attrs, slog.Any("error", err))
			}
			slog.LogAttrs(ctx, level, message, attrs...)

			return resp, err
		}
	}
}
