package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "herohub.HeroService"

const (
	listHeroesMethod   = "/" + ServiceName + "/ListHeroes"
	searchHeroesMethod = "/" + ServiceName + "/SearchHeroes"
	getHeroMethod      = "/" + ServiceName + "/GetHero"
)

// HeroServiceServer is implemented by Server. Messages are well-known types:
// summaries travel as a ListValue of {id, name, image{url}} structs and a full
// hero as a Struct with the same JSON layout as models.Hero.
type HeroServiceServer interface {
	ListHeroes(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	SearchHeroes(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	GetHero(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterHeroServiceServer(s grpc.ServiceRegistrar, srv HeroServiceServer) {
	s.RegisterService(&HeroServiceDesc, srv)
}

var HeroServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HeroServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListHeroes", Handler: listHeroesHandler},
		{MethodName: "SearchHeroes", Handler: searchHeroesHandler},
		{MethodName: "GetHero", Handler: getHeroHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "herohub/hero_service",
}

func listHeroesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeroServiceServer).ListHeroes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listHeroesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HeroServiceServer).ListHeroes(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func searchHeroesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeroServiceServer).SearchHeroes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchHeroesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HeroServiceServer).SearchHeroes(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getHeroHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HeroServiceServer).GetHero(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getHeroMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HeroServiceServer).GetHero(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
