package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/personal-info-parser/internal/app"
	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

func main() {
	common.LoadDotEnv()
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      a.Server().Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// optional gRPC health endpoint for orchestrators
	var (
		grpcServer *grpc.Server
		hs         *health.Server
	)
	if addr := cfg.Server.GRPCHealthAddr; addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", addr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		hs = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, hs)
		hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

		go func() {
			logger.Info("grpc health listening", "addr", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("grpc health serve error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("http listening",
			"addr", cfg.Server.HTTPAddr,
			"provider", cfg.LLM.Provider,
			"text_model", cfg.LLM.TextModel,
			"image_model", cfg.LLM.ImageModel,
			"api_key_set", cfg.LLM.APIKey != "",
			"s3", cfg.Storage.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	if hs != nil {
		hs.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("stopped")
}
