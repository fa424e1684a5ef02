package grpcserver

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"herohub/internal/heroes"
)

// New builds a gRPC server with HeroService, the health service and
// reflection registered. The returned health server reports SERVING for
// both the overall server and HeroService.
func New(src heroes.Source, logger *zap.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogger(logger))}, opts...)
	gs := grpc.NewServer(opts...)

	RegisterHeroServiceServer(gs, NewServer(src, logger))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	reflection.Register(gs)
	return gs, hs
}
