package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophjournal/internal/api"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: common.StatusOK}, nil

}

func (s *GRPCServer) ListKeys(ctx context.Context, req *api.ListKeysRequest) (*api.ListKeysResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	keys, err := s.records.ListKeys(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ListKeysResponse{Keys: keys}, nil
}

func (s *GRPCServer) FetchByKeys(ctx context.Context, req *api.FetchByKeysRequest) (*api.FetchResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	recs, err := s.records.FetchByKeys(ctx, userID, req.Keys)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.FetchResponse{Records: toWireRecords(recs)}, nil
}

func (s *GRPCServer) FetchAll(ctx context.Context, req *api.FetchAllRequest) (*api.FetchResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	recs, err := s.records.FetchAll(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.FetchResponse{Records: toWireRecords(recs)}, nil
}

func (s *GRPCServer) Upsert(ctx context.Context, req *api.UpsertRequest) (*api.UpsertResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	rec := fromWireRecord(userID, req.Record)
	out, err := s.records.Upsert(ctx, rec)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Debug(ctx, "Upserted", "user", userID, "key", out.NaturalKey, "id", out.ID)
	return &api.UpsertResponse{Record: toWireRecord(out)}, nil
}

func (s *GRPCServer) Delete(ctx context.Context, req *api.DeleteRequest) (*api.DeleteResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	ok, err := s.records.Delete(ctx, userID, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.DeleteResponse{Deleted: ok}, nil
}

func (s *GRPCServer) DeleteOlderThan(ctx context.Context, req *api.DeleteOlderThanRequest) (*api.DeleteOlderThanResponse, error) {
	userID, err := authorize(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if req.Cutoff.IsZero() {
		return nil, status.Error(codes.InvalidArgument, "cutoff is required")
	}

	n, err := s.records.DeleteOlderThan(ctx, userID, req.Kind, req.Cutoff)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Purged old records", "user", userID, "kind", req.Kind, "cutoff", req.Cutoff, "deleted", n)
	return &api.DeleteOlderThanResponse{Deleted: n}, nil
}

// toStatus maps service errors onto gRPC codes. Unexpected errors are logged
// and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, err.Error())
	return status.Error(codes.Internal, "internal error")
}

func toWireRecord(r models.Record) api.Record {
	out := api.Record{
		ID:         r.ID,
		NaturalKey: r.NaturalKey,
		Kind:       r.Kind,
		Title:      r.Title,
		Body:       r.Body,
		Flags:      r.Flags,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
	if len(r.Items) > 0 {
		out.Items = make([]api.Item, len(r.Items))
		for i, it := range r.Items {
			out.Items[i] = api.Item{Tag: it.Tag, Text: it.Text, Done: it.Done}
		}
	}
	return out
}

func toWireRecords(recs []models.Record) []api.Record {
	out := make([]api.Record, len(recs))
	for i, r := range recs {
		out[i] = toWireRecord(r)
	}
	return out
}

func fromWireRecord(userID string, r api.Record) models.Record {
	out := models.Record{
		ID:         r.ID,
		UserID:     userID,
		NaturalKey: r.NaturalKey,
		Kind:       r.Kind,
		Title:      r.Title,
		Body:       r.Body,
		Flags:      r.Flags,
		CreatedAt:  r.CreatedAt,
	}
	if len(r.Items) > 0 {
		out.Items = make([]models.Item, len(r.Items))
		for i, it := range r.Items {
			out.Items[i] = models.Item{Tag: it.Tag, Text: it.Text, Done: it.Done}
		}
	}
	return out
}
