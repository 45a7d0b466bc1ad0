package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goldshop/infra/grpc"
	"goldshop/infra/postgres"
	"goldshop/pkg/config"
)

func main() {
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, _ := zapConfig.Build()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	zap.L().Info("Inventory gRPC service starting...")

	appConfig := config.Read()

	grpcServer, err := grpc.NewServer(appConfig)
	if err != nil {
		zap.L().Error("failed to create grpc server", zap.Error(err))
		os.Exit(1)
	}

	pgRepository := postgres.NewPgRepository(appConfig.PostgresDSN())
	defer pgRepository.Close()

	grpc.RegisterCategoryServiceServer(grpcServer.GetGRPCServer(), grpc.NewCategoryServiceServer(pgRepository))
	grpcServer.SetServing(grpc.CategoryServiceName)

	zap.L().Info("starting gRPC server...", zap.String("addr", grpcServer.GetListener().Addr().String()))
	go func() {
		if err := grpcServer.Start(); err != nil {
			zap.L().Error("failed to start grpc server", zap.Error(err))
			os.Exit(1)
		}
	}()

	gracefulShutdown(grpcServer)
}

func gracefulShutdown(grpcServer *grpc.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.L().Info("Shutting down server...")

	if err := grpcServer.GracefulStop(); err != nil {
		zap.L().Error("Error during server shutdown", zap.Error(err))
	}

	zap.L().Info("Server gracefully stopped")
}
