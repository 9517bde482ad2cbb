package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"google.golang.org/grpc"
)

// RecordStore is the business layer the handlers delegate to.
type RecordStore interface {
	ListKeys(ctx context.Context, userID string) ([]string, error)
	FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error)
	FetchAll(ctx context.Context, userID string) ([]models.Record, error)
	Upsert(ctx context.Context, rec models.Record) (models.Record, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	DeleteOlderThan(ctx context.Context, userID, kind string, cutoff time.Time) (int64, error)
}

type GRPCServer struct {
	address   string
	records   RecordStore
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, rs RecordStore, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		records:   rs,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.metricsInterceptor, s.accessTokenInterceptor))
	api.RegisterJournalServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
