package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultCallTimeout bounds a single RPC when the caller sets no deadline.
const DefaultCallTimeout = 15 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.JournalServiceClient
	callTimeout time.Duration

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	if _, ok := ctx.Deadline(); !ok && s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials the journal server lazily; the first RPC establishes
// the connection.
func NewGRPCClient(endpointURL, accessToken string, callTimeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, callTimeout: callTimeout}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetAccessToken replaces the token sent with every following call.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return fmt.Errorf("create grpc client for %s: %w", s.endpointURL, err)
	}
	s.conn = conn
	s.client = api.NewJournalServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != common.StatusOK {
		return fmt.Errorf("%w: server status %q", common.ErrUnavailable, resp.Status)
	}
	return nil
}

func (s *GRPCClient) ListKeys(ctx context.Context, userID string) ([]string, error) {
	resp, err := s.client.ListKeys(ctx, &api.ListKeysRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Keys == nil {
		return []string{}, nil
	}
	return resp.Keys, nil
}

func (s *GRPCClient) FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error) {
	if len(keys) == 0 {
		return []models.Record{}, nil
	}
	resp, err := s.client.FetchByKeys(ctx, &api.FetchByKeysRequest{UserID: userID, Keys: keys})
	if err != nil {
		return nil, s.mapError(err)
	}
	return fromAPIRecords(resp.Records), nil
}

func (s *GRPCClient) FetchAll(ctx context.Context, userID string) ([]models.Record, error) {
	resp, err := s.client.FetchAll(ctx, &api.FetchAllRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return fromAPIRecords(resp.Records), nil
}

func (s *GRPCClient) Upsert(ctx context.Context, userID string, rec models.Record) (models.Record, error) {
	resp, err := s.client.Upsert(ctx, &api.UpsertRequest{UserID: userID, Record: toAPIRecord(rec)})
	if err != nil {
		return models.Record{}, s.mapError(err)
	}
	return fromAPIRecord(resp.Record), nil
}

func (s *GRPCClient) Delete(ctx context.Context, userID string, id string) (bool, error) {
	resp, err := s.client.Delete(ctx, &api.DeleteRequest{UserID: userID, ID: id})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Deleted, nil
}

func (s *GRPCClient) DeleteOlderThan(ctx context.Context, userID string, kind models.Kind, cutoff time.Time) (int, error) {
	resp, err := s.client.DeleteOlderThan(ctx, &api.DeleteOlderThanRequest{UserID: userID, Kind: string(kind), Cutoff: cutoff.UTC()})
	if err != nil {
		return 0, s.mapError(err)
	}
	return int(resp.Deleted), nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, common.ErrTokenExpired)
		}
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	case codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrCancelled, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
