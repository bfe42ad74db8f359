package http_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
	deliveryhttp "github.com/optimization-report/internal/delivery/http"
	"github.com/optimization-report/internal/delivery/http/handler"
	"github.com/optimization-report/internal/domain"
)

type stubMonitoring struct {
	depths []int
}

func (s *stubMonitoring) Heartbeat(ctx context.Context, hb domain.Heartbeat) error { return nil }

func (s *stubMonitoring) CompleteJob(ctx context.Context, job domain.JobCompletion) error { return nil }

func (s *stubMonitoring) QueueMetrics(ctx context.Context, depth int) error {
	s.depths = append(s.depths, depth)
	return nil
}

func (s *stubMonitoring) Status(ctx context.Context) (*domain.MonitoringStatus, error) {
	return &domain.MonitoringStatus{}, nil
}

func (s *stubMonitoring) Ranking(ctx context.Context) ([]domain.RankingEntry, error) {
	return []domain.RankingEntry{}, nil
}

func newServer(checks map[string]deliveryhttp.HealthCheck, monitoring handler.MonitoringService) *deliveryhttp.Server {
	cfg := &config.Config{
		Auth: config.AuthConfig{MonitoringSecret: "mon-secret"},
	}
	handlers := deliveryhttp.Handlers{}
	if monitoring != nil {
		handlers.Monitoring = handler.NewMonitoringHandler(monitoring, zap.NewNop())
	}
	return deliveryhttp.NewServer(cfg, zap.NewNop(), handlers, checks)
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newServer(map[string]deliveryhttp.HealthCheck{
			"postgres": func(ctx context.Context) error { return nil },
		}, nil)

		resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("degraded", func(t *testing.T) {
		srv := newServer(map[string]deliveryhttp.HealthCheck{
			"postgres": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
		}, nil)

		resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestServer_MonitoringRoutesRequireSecret(t *testing.T) {
	monitoring := &stubMonitoring{}
	srv := newServer(nil, monitoring)

	send := func(token string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/monitoring/queue-metrics", strings.NewReader(`{"queueDepth":5}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		if token != "" {
			req.Header.Set("X-Auth-Token", token)
		}
		resp, err := srv.App().Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, send(""))
	assert.Equal(t, fiber.StatusUnauthorized, send("wrong"))
	assert.Equal(t, fiber.StatusOK, send("mon-secret"))
	assert.Equal(t, []int{5}, monitoring.depths)

	// чтение статуса открыто
	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/monitoring/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestServer_UnmountedRoutes(t *testing.T) {
	srv := newServer(nil, nil)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/report", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	srv := newServer(nil, nil)

	resp, err := srv.App().Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
