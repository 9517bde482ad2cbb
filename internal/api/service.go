package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophjournal.v1.JournalService"

// Full method names, usable in interceptors.
const (
	MethodPing            = "/" + ServiceName + "/Ping"
	MethodListKeys        = "/" + ServiceName + "/ListKeys"
	MethodFetchByKeys     = "/" + ServiceName + "/FetchByKeys"
	MethodFetchAll        = "/" + ServiceName + "/FetchAll"
	MethodUpsert          = "/" + ServiceName + "/Upsert"
	MethodDelete          = "/" + ServiceName + "/Delete"
	MethodDeleteOlderThan = "/" + ServiceName + "/DeleteOlderThan"
)

// JournalServiceClient is the client API of the journal service.
type JournalServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	ListKeys(ctx context.Context, in *ListKeysRequest, opts ...grpc.CallOption) (*ListKeysResponse, error)
	FetchByKeys(ctx context.Context, in *FetchByKeysRequest, opts ...grpc.CallOption) (*FetchResponse, error)
	FetchAll(ctx context.Context, in *FetchAllRequest, opts ...grpc.CallOption) (*FetchResponse, error)
	Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
	DeleteOlderThan(ctx context.Context, in *DeleteOlderThanRequest, opts ...grpc.CallOption) (*DeleteOlderThanResponse, error)
}

type journalServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewJournalServiceClient(cc grpc.ClientConnInterface) JournalServiceClient {
	return &journalServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *journalServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingRequest, PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *journalServiceClient) ListKeys(ctx context.Context, in *ListKeysRequest, opts ...grpc.CallOption) (*ListKeysResponse, error) {
	return invoke[ListKeysRequest, ListKeysResponse](ctx, c.cc, MethodListKeys, in, opts)
}

func (c *journalServiceClient) FetchByKeys(ctx context.Context, in *FetchByKeysRequest, opts ...grpc.CallOption) (*FetchResponse, error) {
	return invoke[FetchByKeysRequest, FetchResponse](ctx, c.cc, MethodFetchByKeys, in, opts)
}

func (c *journalServiceClient) FetchAll(ctx context.Context, in *FetchAllRequest, opts ...grpc.CallOption) (*FetchResponse, error) {
	return invoke[FetchAllRequest, FetchResponse](ctx, c.cc, MethodFetchAll, in, opts)
}

func (c *journalServiceClient) Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error) {
	return invoke[UpsertRequest, UpsertResponse](ctx, c.cc, MethodUpsert, in, opts)
}

func (c *journalServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	return invoke[DeleteRequest, DeleteResponse](ctx, c.cc, MethodDelete, in, opts)
}

func (c *journalServiceClient) DeleteOlderThan(ctx context.Context, in *DeleteOlderThanRequest, opts ...grpc.CallOption) (*DeleteOlderThanResponse, error) {
	return invoke[DeleteOlderThanRequest, DeleteOlderThanResponse](ctx, c.cc, MethodDeleteOlderThan, in, opts)
}

// JournalServiceServer is the server API of the journal service.
type JournalServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	ListKeys(context.Context, *ListKeysRequest) (*ListKeysResponse, error)
	FetchByKeys(context.Context, *FetchByKeysRequest) (*FetchResponse, error)
	FetchAll(context.Context, *FetchAllRequest) (*FetchResponse, error)
	Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
	DeleteOlderThan(context.Context, *DeleteOlderThanRequest) (*DeleteOlderThanResponse, error)
}

// RegisterJournalServiceServer registers srv on s.
func RegisterJournalServiceServer(s grpc.ServiceRegistrar, srv JournalServiceServer) {
	s.RegisterService(&JournalServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(JournalServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JournalServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(JournalServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// JournalServiceDesc describes the journal service for grpc.Server.
var JournalServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JournalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(MethodPing, JournalServiceServer.Ping)},
		{MethodName: "ListKeys", Handler: unary(MethodListKeys, JournalServiceServer.ListKeys)},
		{MethodName: "FetchByKeys", Handler: unary(MethodFetchByKeys, JournalServiceServer.FetchByKeys)},
		{MethodName: "FetchAll", Handler: unary(MethodFetchAll, JournalServiceServer.FetchAll)},
		{MethodName: "Upsert", Handler: unary(MethodUpsert, JournalServiceServer.Upsert)},
		{MethodName: "Delete", Handler: unary(MethodDelete, JournalServiceServer.Delete)},
		{MethodName: "DeleteOlderThan", Handler: unary(MethodDeleteOlderThan, JournalServiceServer.DeleteOlderThan)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophjournal/v1/journal",
}
