package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/api"
	internalgrpc "github.com/EgehanKilicarslan/recipe-api/backend-go/internal/grpc"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/metrics"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/worker"
)

// server serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, db, err := boot()
	if err != nil {
		return err
	}
	defer closeDB(db, appLogger)

	appLogger.Info("🚀 [Go] Starting Recipe API...",
		"environment", cfg.AppEnv,
		"database", cfg.DatabaseDriver,
	)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	// Login limiter
	rateLimiter, err := middleware.NewRateLimiter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	}
	defer rateLimiter.Close()

	appMetrics := metrics.New()

	app, err := api.NewApp(db, cfg, rateLimiter, appMetrics, appLogger)
	if err != nil {
		return err
	}

	// gRPC health server
	healthServer := internalgrpc.NewHealthServer(sqlDB, appLogger)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.ApiGrpcPort))
	if err != nil {
		appLogger.Error("❌ Failed to listen for gRPC", "error", err)
		return err
	}
	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			appLogger.Error("❌ gRPC Server failed", "error", err)
		}
	}()
	defer healthServer.Stop()

	// Background maintenance
	pool := worker.NewPool(appLogger)
	pool.Every("token-cleanup", cfg.TokenCleanupInterval, func(ctx context.Context) error {
		deleted, err := app.AuthService.CleanupExpiredTokens()
		if err != nil {
			return err
		}
		appMetrics.ExpiredTokensDeleted(deleted)
		return nil
	})
	pool.Every("health-check", cfg.HealthCheckInterval, func(ctx context.Context) error {
		appMetrics.SetDatabaseUp(healthServer.Ping(ctx))
		return nil
	})
	defer pool.Shutdown(cfg.ShutdownTimeout)

	router := api.SetupRouter(app.Handlers, app.AuthMiddleware, appMetrics, appLogger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("❌ HTTP Server failed to start", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info("🛑 [Go] Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("❌ HTTP Server shutdown failed", "error", err)
		return err
	}

	appLogger.Info("✅ [Go] Server stopped")
	return nil
}
