// media-service/cmd/mediaservice/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAPI "media-service/internal/api"
	"media-service/internal/config"
	"media-service/internal/domain"
	grpcServer "media-service/internal/grpc"
	"media-service/internal/store"

	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("MediaService configuration is invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	// --- Инициализация хранилища ---
	mediaStorage, err := store.NewMediaStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("MediaService failed to initialize database connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		logger.Info("Closing MediaService database connection...")
		if err := mediaStorage.Close(); err != nil {
			logger.Error("Failed to close MediaService database connection", slog.String("error", err.Error()))
		}
	}()

	// --- Настройка и запуск gRPC сервера ---
	var grpcSrv *grpc.Server
	stopHealth := func() {}
	if cfg.GRPCEnabled() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for MediaService gRPC", slog.String("port", cfg.GRPCPort), slog.String("error", err.Error()))
			mediaStorage.Close()
			os.Exit(1)
		}
		srv, healthSrv := grpcServer.NewGRPCServer(grpcServer.NewServer(mediaStorage, logger), logger)
		grpcSrv = srv
		stopHealth = healthSrv.Shutdown

		go func() {
			logger.Info("MediaService gRPC server starting", slog.String("port", cfg.GRPCPort))
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("MediaService gRPC server Serve() failed", slog.String("error", err.Error()))
			}
		}()
	} else {
		logger.Info("MediaService gRPC server disabled")
	}

	// --- Настройка и запуск HTTP сервера ---
	mediaAPIHandler := httpAPI.NewMediaHandler(mediaStorage, logger, domain.NewValidator())
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAPI.NewRouter(mediaAPIHandler, logger, cfg.CORSOrigins),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("MediaService HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("MediaService shutting down...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("MediaService HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		exitCode = 1
	}

	ctxHttp, cancelHttp := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelHttp()
	if err := httpSrv.Shutdown(ctxHttp); err != nil {
		logger.Error("MediaService HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("MediaService HTTP Server gracefully stopped.")
	}

	if grpcSrv != nil {
		stopHealth()
		grpcSrv.GracefulStop()
		logger.Info("MediaService gRPC server gracefully stopped.")
	}

	if exitCode != 0 {
		cancelHttp()
		mediaStorage.Close()
		os.Exit(exitCode)
	}
}
