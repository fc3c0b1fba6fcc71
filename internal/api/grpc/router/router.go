package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/yourplaces-server/internal/api/grpc/handler"
	"github.com/dtroode/yourplaces-server/internal/api/grpc/middleware"
	"github.com/dtroode/yourplaces-server/internal/logger"
)

// Router builds the operational gRPC server.
type Router struct {
	deps   map[string]handler.Pinger
	logger *logger.Logger
}

func New(deps map[string]handler.Pinger, logger *logger.Logger) *Router {
	return &Router{deps: deps, logger: logger}
}

// Register sets up interceptors and registers the health and reflection services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(func(_ context.Context, p any) error {
		r.logger.Error("gRPC panic recovered", "panic", p)
		return status.Error(codes.Internal, "internal server error")
	})

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	healthpb.RegisterHealthServer(s, handler.NewHealth(r.deps, r.logger))
	reflection.Register(s)

	return s
}
