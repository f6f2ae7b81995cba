package grpc

import (
	"context"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "recipe.api"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1.Health. Its status follows database pings.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	db     Pinger
	logger *slog.Logger
}

// NewHealthServer creates the gRPC server with the health service registered.
// The initial status is NOT_SERVING until the first successful ping.
func NewHealthServer(db Pinger, logger *slog.Logger) *HealthServer {
	h := &HealthServer{
		health: health.NewServer(),
		db:     db,
		logger: logger,
	}

	h.server = grpc.NewServer(
		grpc.ChainUnaryInterceptor(h.recoveryInterceptor, h.loggingInterceptor),
	)
	grpc_health_v1.RegisterHealthServer(h.server, h.health)
	reflection.Register(h.server)

	h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

// Ping pings the database and updates the serving status. It reports whether the database answered.
func (h *HealthServer) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("⚠️ [gRPC] Database ping failed", "error", err)
		h.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return false
	}

	h.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	return true
}

// Serve blocks serving on lis until Stop is called.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("🔌 [gRPC] Health server running...", "addr", lis.Addr().String())
	return h.server.Serve(lis)
}

// Stop marks every service as not serving and drains in-flight calls.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
	h.logger.Info("✅ [gRPC] Health server stopped")
}

func (h *HealthServer) setStatus(s grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", s)
	h.health.SetServingStatus(ServiceName, s)
}

func (h *HealthServer) recoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("💥 [gRPC] Panic recovered",
				"method", info.FullMethod,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func (h *HealthServer) loggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	h.logger.Debug("📡 [gRPC] Request",
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", status.Code(err).String(),
	)
	return resp, err
}
