package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"herohub/internal/heroes"
	"herohub/pkg/models"
)

type Server struct {
	Source heroes.Source
	Log    *zap.Logger
}

func NewServer(src heroes.Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Source: src, Log: logger}
}

func (s *Server) ListHeroes(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	items, err := s.Source.ListHeroes(ctx, strings.TrimSpace(req.GetValue()))
	if err != nil {
		return nil, s.statusError("list", err)
	}
	return toListValue(items)
}

func (s *Server) SearchHeroes(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	items, err := s.Source.SearchHeroes(ctx, req.GetValue())
	if err != nil {
		return nil, s.statusError("search", err)
	}
	return toListValue(items)
}

func (s *Server) GetHero(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	h, err := s.Source.GetHeroByID(ctx, id)
	if err != nil {
		return nil, s.statusError("get", err)
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return out, nil
}

func (s *Server) statusError(op string, err error) error {
	code := CodeFor(err)
	if code == codes.Unavailable || code == codes.DataLoss {
		s.Log.Warn("upstream call failed", zap.String("op", op), zap.Error(err))
	}
	return status.Error(code, err.Error())
}

// CodeFor maps an adapter error onto a gRPC status code.
func CodeFor(err error) codes.Code {
	var cfgErr *heroes.ConfigurationError
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, heroes.ErrEmptyID):
		return codes.InvalidArgument
	case errors.As(err, &cfgErr):
		return codes.FailedPrecondition
	case heroes.IsNotFound(err):
		return codes.NotFound
	case errors.Is(err, heroes.ErrShapeMismatch), errors.Is(err, heroes.ErrMalformedResponse):
		return codes.DataLoss
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Unavailable
	}
}

func toListValue(items []models.HeroSummary) (*structpb.ListValue, error) {
	if items == nil {
		items = []models.HeroSummary{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	out := &structpb.ListValue{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return out, nil
}

// UnaryLogger logs every unary call with its code and latency.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)),
		)
		return resp, err
	}
}
