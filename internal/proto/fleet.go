// Package proto describes the FleetControl gRPC service declared in
// fleet.proto. Messages are protobuf well-known types, so no generated code
// is needed and the default codec carries them.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "printfleet.FleetControl"

const (
	MethodLogin          = "Login"
	MethodListPrinters   = "ListPrinters"
	MethodListFirmware   = "ListFirmware"
	MethodGetFirmware    = "GetFirmware"
	MethodDeployFirmware = "DeployFirmware"
	MethodCancelFirmware = "CancelFirmware"
	MethodHistoryStats   = "HistoryStats"
)

// FullMethod returns the wire name of method, as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// FleetControlServer is implemented by the server.
type FleetControlServer interface {
	Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListPrinters(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	ListFirmware(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	GetFirmware(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	DeployFirmware(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	CancelFirmware(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	HistoryStats(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
}

func unary[T any, PT interface {
	*T
	proto.Message
}](method string, call func(FleetControlServer, context.Context, PT) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PT(new(T))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FleetControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FleetControlServer), ctx, req.(PT))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var FleetControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FleetControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodLogin, Handler: unary(MethodLogin, FleetControlServer.Login)},
		{MethodName: MethodListPrinters, Handler: unary(MethodListPrinters, FleetControlServer.ListPrinters)},
		{MethodName: MethodListFirmware, Handler: unary(MethodListFirmware, FleetControlServer.ListFirmware)},
		{MethodName: MethodGetFirmware, Handler: unary(MethodGetFirmware, FleetControlServer.GetFirmware)},
		{MethodName: MethodDeployFirmware, Handler: unary(MethodDeployFirmware, FleetControlServer.DeployFirmware)},
		{MethodName: MethodCancelFirmware, Handler: unary(MethodCancelFirmware, FleetControlServer.CancelFirmware)},
		{MethodName: MethodHistoryStats, Handler: unary(MethodHistoryStats, FleetControlServer.HistoryStats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "printfleet/fleet",
}

func RegisterFleetControlServer(s grpc.ServiceRegistrar, srv FleetControlServer) {
	s.RegisterService(&FleetControl_ServiceDesc, srv)
}

// FleetControlClient calls the service over conn.
type FleetControlClient struct {
	cc grpc.ClientConnInterface
}

func NewFleetControlClient(cc grpc.ClientConnInterface) *FleetControlClient {
	return &FleetControlClient{cc: cc}
}

func (c *FleetControlClient) invoke(ctx context.Context, method string, in proto.Message, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FleetControlClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodLogin, in, opts...)
}

func (c *FleetControlClient) ListPrinters(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListPrinters, in, opts...)
}

func (c *FleetControlClient) ListFirmware(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListFirmware, in, opts...)
}

func (c *FleetControlClient) GetFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetFirmware, in, opts...)
}

func (c *FleetControlClient) DeployFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDeployFirmware, in, opts...)
}

func (c *FleetControlClient) CancelFirmware(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCancelFirmware, in, opts...)
}

func (c *FleetControlClient) HistoryStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodHistoryStats, in, opts...)
}
