package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake api client
 *************/

type fakePB struct {
	api.JournalServiceClient

	lastListKeysReq    *api.ListKeysRequest
	lastFetchByKeysReq *api.FetchByKeysRequest
	lastUpsertReq      *api.UpsertRequest
	lastDeleteOldReq   *api.DeleteOlderThanRequest

	pingResp *api.PingResponse
	pingErr  error

	listKeysResp *api.ListKeysResponse
	fetchResp    *api.FetchResponse
	upsertResp   *api.UpsertResponse
	deleteResp   *api.DeleteResponse
	deleteOld    *api.DeleteOlderThanResponse
	err          error
}

func (f *fakePB) Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return f.pingResp, f.pingErr
}
func (f *fakePB) ListKeys(ctx context.Context, in *api.ListKeysRequest, opts ...grpc.CallOption) (*api.ListKeysResponse, error) {
	f.lastListKeysReq = in
	return f.listKeysResp, f.err
}
func (f *fakePB) FetchByKeys(ctx context.Context, in *api.FetchByKeysRequest, opts ...grpc.CallOption) (*api.FetchResponse, error) {
	f.lastFetchByKeysReq = in
	return f.fetchResp, f.err
}
func (f *fakePB) FetchAll(ctx context.Context, in *api.FetchAllRequest, opts ...grpc.CallOption) (*api.FetchResponse, error) {
	return f.fetchResp, f.err
}
func (f *fakePB) Upsert(ctx context.Context, in *api.UpsertRequest, opts ...grpc.CallOption) (*api.UpsertResponse, error) {
	f.lastUpsertReq = in
	return f.upsertResp, f.err
}
func (f *fakePB) Delete(ctx context.Context, in *api.DeleteRequest, opts ...grpc.CallOption) (*api.DeleteResponse, error) {
	return f.deleteResp, f.err
}
func (f *fakePB) DeleteOlderThan(ctx context.Context, in *api.DeleteOlderThanRequest, opts ...grpc.CallOption) (*api.DeleteOlderThanResponse, error) {
	f.lastDeleteOldReq = in
	return f.deleteOld, f.err
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_AttachesTokenAndDeadline(t *testing.T) {
	c := &GRPCClient{accessToken: "A1", callTimeout: time.Minute}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"A1"}, md.Get(common.AccessTokenHeaderName))
		_, ok := ctx.Deadline()
		require.True(t, ok)
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), api.MethodListKeys, nil, nil, nil, invoker))
}

func TestInterceptor_ReplacesExistingTokenAndKeepsCallerDeadline(t *testing.T) {
	c := &GRPCClient{accessToken: "fresh", callTimeout: time.Hour}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale", "trace", "t1")
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	want, _ := ctx.Deadline()

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"fresh"}, md.Get(common.AccessTokenHeaderName))
		require.Equal(t, []string{"t1"}, md.Get("trace"))
		got, _ := ctx.Deadline()
		require.Equal(t, want, got)
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(ctx, api.MethodPing, nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return status.Error(codes.Internal, "boom")
	}
	err := c.accessTokenInterceptor(context.Background(), api.MethodPing, nil, nil, nil, invoker)
	require.Error(t, err)
}

func TestSetAccessToken_AppliesToNextCall(t *testing.T) {
	c := &GRPCClient{accessToken: "old"}
	c.SetAccessToken("new")

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), api.MethodPing, nil, nil, nil, invoker))
}

/*************
 * mapError
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "no token"), common.ErrUnauthorized},
		{"expired", status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error()), common.ErrTokenExpired},
		{"permission", status.Error(codes.PermissionDenied, "other user"), common.ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "conn refused"), common.ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), common.ErrUnavailable},
		{"canceled", status.Error(codes.Canceled, "ctx"), common.ErrCancelled},
		{"not found", status.Error(codes.NotFound, "no record"), common.ErrNotFound},
		{"invalid", status.Error(codes.InvalidArgument, "bad key"), common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, c.mapError(tt.in), tt.want)
		})
	}

	require.NoError(t, c.mapError(nil))

	internal := status.Error(codes.Internal, "db down")
	err := c.mapError(internal)
	require.ErrorIs(t, err, internal)
	assert.Contains(t, err.Error(), "rpc error")

	plain := errors.New("plain")
	require.ErrorIs(t, c.mapError(plain), plain)
}

/*************
 * RPC wrappers
 *************/

func TestPing(t *testing.T) {
	f := &fakePB{pingResp: &api.PingResponse{Status: common.StatusOK}}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Ping(context.Background()))

	f.pingResp = &api.PingResponse{Status: "DEGRADED"}
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrUnavailable)

	f.pingErr = status.Error(codes.Unavailable, "down")
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrUnavailable)
}

func TestListKeys(t *testing.T) {
	f := &fakePB{listKeysResp: &api.ListKeysResponse{}}
	c := &GRPCClient{client: f}

	keys, err := c.ListKeys(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, keys)
	assert.Empty(t, keys)
	assert.Equal(t, "alice", f.lastListKeysReq.UserID)

	f.err = status.Error(codes.Unavailable, "down")
	_, err = c.ListKeys(context.Background(), "alice")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestFetchByKeys_SkipsRPCForEmptyKeys(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}

	recs, err := c.FetchByKeys(context.Background(), "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Nil(t, f.lastFetchByKeysReq)
}

func TestFetchByKeys_ConvertsRecords(t *testing.T) {
	created := time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC)
	f := &fakePB{fetchResp: &api.FetchResponse{Records: []api.Record{{
		ID: "r1", NaturalKey: "2024-01-06", Kind: api.KindEntry, Body: "b",
		Items:     []api.Item{{Tag: "prayer", Text: "healing", Done: true}},
		CreatedAt: created, UpdatedAt: created,
	}}}}
	c := &GRPCClient{client: f}

	recs, err := c.FetchByKeys(context.Background(), "alice", []string{"2024-01-06"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.Record{
		ID: "r1", NaturalKey: "2024-01-06", Kind: models.KindEntry, Body: "b",
		Items:     []models.Item{{Tag: "prayer", Text: "healing", Done: true}},
		CreatedAt: created, UpdatedAt: created,
	}, recs[0])
	assert.Equal(t, []string{"2024-01-06"}, f.lastFetchByKeysReq.Keys)
}

func TestUpsert_SendsRecordAndReturnsCanonical(t *testing.T) {
	f := &fakePB{upsertResp: &api.UpsertResponse{Record: api.Record{ID: "canonical", NaturalKey: "topic:books", Kind: api.KindTopic}}}
	c := &GRPCClient{client: f}

	out, err := c.Upsert(context.Background(), "alice", models.Record{NaturalKey: "topic:books", Kind: models.KindTopic, Title: "Books"})
	require.NoError(t, err)
	assert.Equal(t, "canonical", out.ID)
	assert.Equal(t, "Books", f.lastUpsertReq.Record.Title)
	assert.Equal(t, "topic", f.lastUpsertReq.Record.Kind)
}

func TestDeleteAndDeleteOlderThan(t *testing.T) {
	f := &fakePB{deleteResp: &api.DeleteResponse{Deleted: true}, deleteOld: &api.DeleteOlderThanResponse{Deleted: 4}}
	c := &GRPCClient{client: f}
	ctx := context.Background()

	ok, err := c.Delete(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	cutoff := time.Date(2024, 2, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	n, err := c.DeleteOlderThan(ctx, "alice", models.KindTopic, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "topic", f.lastDeleteOldReq.Kind)
	assert.True(t, f.lastDeleteOldReq.Cutoff.Equal(cutoff))
	assert.Equal(t, time.UTC, f.lastDeleteOldReq.Cutoff.Location())

	f.err = status.Error(codes.PermissionDenied, "nope")
	_, err = c.Delete(ctx, "bob", "r1")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestNewGRPCClient_CloseIsSafe(t *testing.T) {
	c, err := NewGRPCClient("localhost:0", "tok", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	require.NoError(t, (&GRPCClient{}).Close())
}
