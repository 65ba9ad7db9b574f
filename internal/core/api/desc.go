package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "renamer.v1.RenameService"

// RenameServer is the server API of the rename service. Messages are
// google.protobuf.Struct documents.
type RenameServer interface {
	Process(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unprocess(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Resolve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CaptureExact(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(RenameServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RenameServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RenameServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RenameServiceDesc describes the rename service for grpc.Server.RegisterService.
var RenameServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RenameServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: unaryHandler("Process", RenameServer.Process)},
		{MethodName: "Unprocess", Handler: unaryHandler("Unprocess", RenameServer.Unprocess)},
		{MethodName: "Resolve", Handler: unaryHandler("Resolve", RenameServer.Resolve)},
		{MethodName: "CaptureExact", Handler: unaryHandler("CaptureExact", RenameServer.CaptureExact)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "renamer/v1/rename.proto",
}

// RegisterRenameServer registers srv with s.
func RegisterRenameServer(s grpc.ServiceRegistrar, srv RenameServer) {
	s.RegisterService(&RenameServiceDesc, srv)
}

// RenameClient calls the rename service.
type RenameClient struct {
	cc grpc.ClientConnInterface
}

// NewRenameClient wraps a client connection.
func NewRenameClient(cc grpc.ClientConnInterface) *RenameClient {
	return &RenameClient{cc: cc}
}

func (c *RenameClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RenameClient) Process(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Process", in, opts...)
}

func (c *RenameClient) Unprocess(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Unprocess", in, opts...)
}

func (c *RenameClient) Resolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Resolve", in, opts...)
}

func (c *RenameClient) CaptureExact(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CaptureExact", in, opts...)
}
