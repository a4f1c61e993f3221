package v1alpha1

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

// UserHeader carries the caller's username on every call
const UserHeader = "x-rpg-user"

const maxUsernameLength = 64

type callerKey struct{}

// WithCaller stores the caller on ctx
func WithCaller(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, callerKey{}, username)
}

// CallerFrom returns the caller stored by the identity interceptors
func CallerFrom(ctx context.Context) (string, error) {
	username, _ := ctx.Value(callerKey{}).(string)
	if username == "" {
		return "", errors.Unauthenticated("caller identity is required")
	}
	return username, nil
}

func callerFromMetadata(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.Unauthenticated("caller identity is required")
	}
	values := md.Get(UserHeader)
	if len(values) == 0 {
		return "", errors.Unauthenticated("caller identity is required")
	}
	username := strings.TrimSpace(values[0])
	if username == "" {
		return "", errors.Unauthenticated("caller identity is required")
	}
	if len(username) > maxUsernameLength {
		return "", errors.InvalidArgument("username is too long")
	}
	return username, nil
}

// publicMethods skip the identity check
var publicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/Watch": true,
	"/grpc.health.v1.Health/List":  true,
}

// UnaryIdentityInterceptor rejects calls without a caller and stores the
// caller on the context
func UnaryIdentityInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		username, err := callerFromMetadata(ctx)
		if err != nil {
			return nil, errors.ToGRPCError(err)
		}
		return handler(WithCaller(ctx, username), req)
	}
}

// StreamIdentityInterceptor is the streaming form of UnaryIdentityInterceptor
func StreamIdentityInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if publicMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		username, err := callerFromMetadata(ss.Context())
		if err != nil {
			return errors.ToGRPCError(err)
		}
		return handler(srv, &identityStream{ServerStream: ss, ctx: WithCaller(ss.Context(), username)})
	}
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *identityStream) Context() context.Context {
	return s.ctx
}
