package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// publicMethods are served without an access token.
var publicMethods = map[string]bool{
	api.MethodPing: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	ctx = context.WithValue(ctx, userIDKey, userID)

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.GetOrCreateCounter(fmt.Sprintf(`journal_server_rpc_total{method=%q,code=%q}`, info.FullMethod, code.String())).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`journal_server_rpc_duration_seconds{method=%q}`, info.FullMethod)).UpdateDuration(start)

	if err != nil && code == codes.Internal {
		s.logger.Error(ctx, "rpc failed", "method", info.FullMethod, "error", err)
	}
	return resp, err
}

// authorize resolves the collection a call may touch. An empty request user
// defaults to the token's user; naming anyone else is denied.
func authorize(ctx context.Context, requested string) (string, error) {
	tokenUser, _ := ctx.Value(userIDKey).(string)
	if tokenUser == "" {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	if requested != "" && requested != tokenUser {
		return "", status.Error(codes.PermissionDenied, "token does not grant access to this user")
	}
	return tokenUser, nil
}
