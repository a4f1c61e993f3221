package v1alpha1

import (
	"context"
	"log/slog"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

// InterceptorLogger adapts slog to the middleware logger
func InterceptorLogger(l *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// ServerOptions chains logging, panic recovery and caller identity, in
// that order, for unary and streaming calls
func ServerOptions(logger *slog.Logger) []grpc.ServerOption {
	recoveryHandler := grpc_recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		logger.ErrorContext(ctx, "recovered from panic in grpc handler", "panic", p)
		return errors.ToGRPCError(errors.Internal("internal error"))
	})
	logOpts := []grpc_logging.Option{
		grpc_logging.WithLogOnEvents(grpc_logging.FinishCall),
	}

	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(InterceptorLogger(logger), logOpts...),
			grpc_recovery.UnaryServerInterceptor(recoveryHandler),
			UnaryIdentityInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(InterceptorLogger(logger), logOpts...),
			grpc_recovery.StreamServerInterceptor(recoveryHandler),
			StreamIdentityInterceptor(),
		),
	}
}
