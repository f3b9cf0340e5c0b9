// Package pb holds the compass.v1.HeadingService descriptor. The service
// exchanges protobuf well-known types, so no generated message code is
// needed; payloads are carried in google.protobuf.Struct.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "compass.v1.HeadingService"

const (
	HeadingService_SetForeground_FullMethodName    = "/compass.v1.HeadingService/SetForeground"
	HeadingService_GetStatus_FullMethodName        = "/compass.v1.HeadingService/GetStatus"
	HeadingService_GetHeading_FullMethodName       = "/compass.v1.HeadingService/GetHeading"
	HeadingService_GetHeadingStream_FullMethodName = "/compass.v1.HeadingService/GetHeadingStream"
	HeadingService_ListDev_FullMethodName          = "/compass.v1.HeadingService/ListDev"
	HeadingService_GetInfo_FullMethodName          = "/compass.v1.HeadingService/GetInfo"
)

// HeadingServiceClient is the client API for HeadingService.
type HeadingServiceClient interface {
	SetForeground(ctx context.Context, in *wrapperspb.BoolValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetHeading(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetHeadingStream(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (HeadingService_GetHeadingStreamClient, error)
	ListDev(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type headingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHeadingServiceClient(cc grpc.ClientConnInterface) HeadingServiceClient {
	return &headingServiceClient{cc}
}

func (c *headingServiceClient) SetForeground(ctx context.Context, in *wrapperspb.BoolValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HeadingService_SetForeground_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *headingServiceClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HeadingService_GetStatus_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *headingServiceClient) GetHeading(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HeadingService_GetHeading_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *headingServiceClient) GetHeadingStream(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (HeadingService_GetHeadingStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &HeadingService_ServiceDesc.Streams[0], HeadingService_GetHeadingStream_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &headingServiceGetHeadingStreamClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type HeadingService_GetHeadingStreamClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type headingServiceGetHeadingStreamClient struct {
	grpc.ClientStream
}

func (x *headingServiceGetHeadingStreamClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *headingServiceClient) ListDev(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HeadingService_ListDev_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *headingServiceClient) GetInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HeadingService_GetInfo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// HeadingServiceServer is the server API for HeadingService.
// All implementations must embed UnimplementedHeadingServiceServer.
type HeadingServiceServer interface {
	SetForeground(context.Context, *wrapperspb.BoolValue) (*structpb.Struct, error)
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetHeading(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetHeadingStream(*emptypb.Empty, HeadingService_GetHeadingStreamServer) error
	ListDev(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetInfo(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedHeadingServiceServer()
}

type UnimplementedHeadingServiceServer struct{}

func (UnimplementedHeadingServiceServer) SetForeground(context.Context, *wrapperspb.BoolValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetForeground not implemented")
}
func (UnimplementedHeadingServiceServer) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStatus not implemented")
}
func (UnimplementedHeadingServiceServer) GetHeading(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetHeading not implemented")
}
func (UnimplementedHeadingServiceServer) GetHeadingStream(*emptypb.Empty, HeadingService_GetHeadingStreamServer) error {
	return status.Errorf(codes.Unimplemented, "method GetHeadingStream not implemented")
}
func (UnimplementedHeadingServiceServer) ListDev(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListDev not implemented")
}
func (UnimplementedHeadingServiceServer) GetInfo(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetInfo not implemented")
}
func (UnimplementedHeadingServiceServer) mustEmbedUnimplementedHeadingServiceServer() {}

func RegisterHeadingServiceServer(s grpc.ServiceRegistrar, srv HeadingServiceServer) {
	s.RegisterService(&HeadingService_ServiceDesc, srv)
}

func _HeadingService_SetForeground_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BoolValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeadingServiceServer).SetForeground(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HeadingService_SetForeground_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HeadingServiceServer).SetForeground(ctx, req.(*wrapperspb.BoolValue))
	}
	return interceptor(ctx, in, info, handler)
}

// emptyHandler builds the handler of a unary method taking Empty.
func emptyHandler(fullMethod string, call func(HeadingServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(HeadingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(HeadingServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _HeadingService_GetHeadingStream_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(HeadingServiceServer).GetHeadingStream(m, &headingServiceGetHeadingStreamServer{stream})
}

type HeadingService_GetHeadingStreamServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type headingServiceGetHeadingStreamServer struct {
	grpc.ServerStream
}

func (x *headingServiceGetHeadingStreamServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

// HeadingService_ServiceDesc is the grpc.ServiceDesc for HeadingService.
var HeadingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HeadingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SetForeground",
			Handler:    _HeadingService_SetForeground_Handler,
		},
		{
			MethodName: "GetStatus",
			Handler:    emptyHandler(HeadingService_GetStatus_FullMethodName, HeadingServiceServer.GetStatus),
		},
		{
			MethodName: "GetHeading",
			Handler:    emptyHandler(HeadingService_GetHeading_FullMethodName, HeadingServiceServer.GetHeading),
		},
		{
			MethodName: "ListDev",
			Handler:    emptyHandler(HeadingService_ListDev_FullMethodName, HeadingServiceServer.ListDev),
		},
		{
			MethodName: "GetInfo",
			Handler:    emptyHandler(HeadingService_GetInfo_FullMethodName, HeadingServiceServer.GetInfo),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetHeadingStream",
			Handler:       _HeadingService_GetHeadingStream_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "compass/v1/heading.proto",
}
