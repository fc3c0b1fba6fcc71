package handler

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/yourplaces-server/internal/logger"
)

// ServiceName is the service reported by Check for the REST backend.
const ServiceName = "yourplaces.Backend"

const checkTimeout = 3 * time.Second

// Pinger is a dependency whose availability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports SERVING only while every dependency answers a ping.
type Health struct {
	healthpb.UnimplementedHealthServer

	deps   map[string]Pinger
	logger *logger.Logger
}

func NewHealth(deps map[string]Pinger, logger *logger.Logger) *Health {
	return &Health{deps: deps, logger: logger}
}

func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Warn("Health: dependency unavailable",
				"dependency", name,
				"error", err.Error())
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
