package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/yourplaces-server/internal/testutil"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_Check(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		deps       map[string]Pinger
		service    string
		wantStatus healthpb.HealthCheckResponse_ServingStatus
		wantCode   codes.Code
	}{
		{name: "all up", deps: map[string]Pinger{"postgres": ok, "storage": ok}, wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "named service", deps: map[string]Pinger{"postgres": ok}, service: ServiceName, wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "dependency down", deps: map[string]Pinger{"postgres": ok, "storage": down}, wantStatus: healthpb.HealthCheckResponse_NOT_SERVING},
		{name: "unknown service", deps: map[string]Pinger{}, service: "other", wantCode: codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealth(tt.deps, testutil.MakeNoopLogger())

			resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{Service: tt.service})
			if tt.wantCode != codes.OK {
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.GetStatus())
		})
	}
}
