// media-service/internal/grpc/service.go
package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Описание сервиса media.v1.MediaLookup. Сообщения - стандартные well-known types,
// поэтому сгенерированный код не нужен.
const (
	ServiceName            = "media.v1.MediaLookup"
	GetMediaMethod         = "/" + ServiceName + "/GetMedia"
	CheckMediaExistsMethod = "/" + ServiceName + "/CheckMediaExists"
)

// MediaLookupServer - серверная часть media.v1.MediaLookup.
type MediaLookupServer interface {
	GetMedia(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CheckMediaExists(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// RegisterMediaLookupServer регистрирует реализацию на grpc.Server.
func RegisterMediaLookupServer(s gogrpc.ServiceRegistrar, srv MediaLookupServer) {
	s.RegisterService(&MediaLookupServiceDesc, srv)
}

func getMediaHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MediaLookupServer).GetMedia(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: GetMediaMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MediaLookupServer).GetMedia(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func checkMediaExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MediaLookupServer).CheckMediaExists(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: CheckMediaExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MediaLookupServer).CheckMediaExists(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// MediaLookupServiceDesc - grpc.ServiceDesc для media.v1.MediaLookup.
var MediaLookupServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MediaLookupServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "GetMedia", Handler: getMediaHandler},
		{MethodName: "CheckMediaExists", Handler: checkMediaExistsHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "media/v1/media_lookup.proto",
}
