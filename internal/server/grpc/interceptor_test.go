package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withToken(tok string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, tok))
}

func TestInterceptor_PingIsPublic(t *testing.T) {
	s := newHandlerServer(&fakeStore{})
	info := &grpc.UnaryServerInfo{FullMethod: api.MethodPing}

	called := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		called = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newHandlerServer(&fakeStore{})
	info := &grpc.UnaryServerInfo{FullMethod: api.MethodListKeys}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidAndExpiredToken(t *testing.T) {
	s := newHandlerServer(&fakeStore{})
	info := &grpc.UnaryServerInfo{FullMethod: api.MethodUpsert}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withToken("not-a-valid-jwt"), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrInvalidToken.Error(), status.Convert(err).Message())

	expired, err := auth.GenerateToken("alice", []byte("secret"), -time.Minute)
	require.NoError(t, err)
	_, err = s.accessTokenInterceptor(withToken(expired), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())
}

func TestInterceptor_ValidTokenPutsUserInContext(t *testing.T) {
	s := newHandlerServer(&fakeStore{})
	info := &grpc.UnaryServerInfo{FullMethod: api.MethodFetchAll}

	tok, err := auth.GenerateToken("alice", []byte("secret"), time.Hour)
	require.NoError(t, err)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return ctx.Value(userIDKey), nil
	}

	got, err := s.accessTokenInterceptor(withToken(tok), nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestMetricsInterceptor_PassesThrough(t *testing.T) {
	s := newHandlerServer(&fakeStore{})
	info := &grpc.UnaryServerInfo{FullMethod: api.MethodDelete}
	boom := status.Error(codes.Internal, "boom")

	_, err := s.metricsInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, boom
	})
	require.True(t, errors.Is(err, boom))

	resp, err := s.metricsInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}
