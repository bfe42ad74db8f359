package optimizer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
)

func newTestClient(url string, threshold uint32) *client {
	return NewClient(&config.AssetsConfig{
		BaseURL:          url + "/",
		RequestTimeout:   time.Second,
		BreakerThreshold: threshold,
		BreakerTimeout:   time.Minute,
	}, zap.NewNop()).(*client)
}

func TestClient_HasOptimizedBundle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/present-mobile.zip":
			w.WriteHeader(http.StatusOK)
		case "/forbidden-mobile.zip":
			w.WriteHeader(http.StatusForbidden)
		case "/broken-mobile.zip":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, 10)
	ctx := context.Background()

	ok, err := c.HasOptimizedBundle(ctx, "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasOptimizedBundle(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.HasOptimizedBundle(ctx, "forbidden")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.HasOptimizedBundle(ctx, "broken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestClient_FetchReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/ok-report.json":
			_, _ = w.Write([]byte(`{"success":true,"timestamp":"2025-01-01T00:00:00Z","originalSize":100,"optimizedSize":40}`))
		case "/failed-report.json":
			_, _ = w.Write([]byte(`{"success":false,"error":"texture too large"}`))
		case "/nosuccess-report.json":
			_, _ = w.Write([]byte(`{"details":{}}`))
		case "/garbage-report.json":
			_, _ = w.Write([]byte(`not json`))
		case "/down-report.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, 10)
	ctx := context.Background()

	t.Run("successful report", func(t *testing.T) {
		report, err := c.FetchReport(ctx, "ok")
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, "ok", report.SceneID)
		assert.True(t, report.Success)
		assert.Equal(t, "2025-01-01T00:00:00Z", report.Timestamp)
		assert.EqualValues(t, 100, report.Details["originalSize"])
	})

	t.Run("failed report", func(t *testing.T) {
		report, err := c.FetchReport(ctx, "failed")
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.False(t, report.Success)
		assert.Equal(t, "texture too large", report.Error)
	})

	t.Run("missing success field defaults to false", func(t *testing.T) {
		report, err := c.FetchReport(ctx, "nosuccess")
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.False(t, report.Success)
	})

	t.Run("not found is absence", func(t *testing.T) {
		report, err := c.FetchReport(ctx, "unknown")
		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("malformed body is absence", func(t *testing.T) {
		report, err := c.FetchReport(ctx, "garbage")
		assert.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("server error is transient", func(t *testing.T) {
		_, err := c.FetchReport(ctx, "down")
		assert.ErrorIs(t, err, ErrServerUnavailable)
	})
}

func TestClient_BreakerOpensOnConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.HasOptimizedBundle(ctx, "x")
		require.ErrorIs(t, err, ErrServerUnavailable)
	}

	_, err := c.HasOptimizedBundle(ctx, "x")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(3), hits.Load())

	// 404 на отчётах не должен открывать breaker
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	c2 := newTestClient(notFound.URL, 2)
	for i := 0; i < 5; i++ {
		report, err := c2.FetchReport(ctx, "x")
		require.NoError(t, err)
		assert.Nil(t, report)
	}
}
