package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"herohub/internal/grpcserver"
	"herohub/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	src, err := cfg.NewSource(logger)
	if err != nil {
		logger.Fatal("upstream configuration failed", zap.Error(err))
	}

	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.Error(err))
	}

	grpcServer, health := grpcserver.New(src, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		health.Shutdown()
		grpcServer.GracefulStop()
	}()

	logger.Info("gRPC server listening",
		zap.String("addr", cfg.GRPCAddr),
		zap.String("provider", string(src.Provider())),
	)
	if err := grpcServer.Serve(listener); err != nil {
		logger.Fatal("grpc server stopped", zap.Error(err))
	}
}
