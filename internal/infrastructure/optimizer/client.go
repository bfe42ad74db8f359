// Package optimizer - клиент сервера оптимизированных ассетов:
// проверка наличия бандла и загрузка отчёта оптимизации.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/retry"
)

const (
	bundleSuffix = "-mobile.zip"
	reportSuffix = "-report.json"

	defaultBreakerThreshold = 50
)

// ErrServerUnavailable - ответ 5xx или 429
var ErrServerUnavailable = errors.New("optimizer server unavailable")

type client struct {
	httpClient    *http.Client
	baseURL       string
	probeBreaker  *gobreaker.CircuitBreaker[bool]
	reportBreaker *gobreaker.CircuitBreaker[*domain.OptimizationReport]
	logger        *zap.Logger
}

// NewClient создаёт клиент; каждый тип запросов идёт через свой circuit breaker
func NewClient(cfg *config.AssetsConfig, logger *zap.Logger) repository.AssetProber {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = defaultBreakerThreshold
	}

	c := &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
	c.probeBreaker = gobreaker.NewCircuitBreaker[bool](c.breakerSettings("optimizer-probe", threshold, cfg))
	c.reportBreaker = gobreaker.NewCircuitBreaker[*domain.OptimizationReport](c.breakerSettings("optimizer-report", threshold, cfg))
	return c
}

func (c *client) breakerSettings(name string, threshold uint32, cfg *config.AssetsConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// отказ 4xx - это ответ сервера, а не его недоступность
		IsSuccessful: func(err error) bool {
			return err == nil || retry.IsPermanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

func (c *client) bundleURL(sceneID string) string {
	return c.baseURL + "/" + sceneID + bundleSuffix
}

func (c *client) reportURL(sceneID string) string {
	return c.baseURL + "/" + sceneID + reportSuffix
}

// HasOptimizedBundle: 200 - бандл есть, прочие ответы ниже 500 - бандла нет
func (c *client) HasOptimizedBundle(ctx context.Context, sceneID string) (bool, error) {
	return c.probeBreaker.Execute(func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.bundleURL(sceneID), nil)
		if err != nil {
			return false, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return false, fmt.Errorf("failed to probe bundle %s: %w", sceneID, err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if unavailable(resp.StatusCode) {
			return false, fmt.Errorf("%w: probe %s status %d", ErrServerUnavailable, sceneID, resp.StatusCode)
		}
		return resp.StatusCode == http.StatusOK, nil
	})
}

// FetchReport загружает {id}-report.json.
// Любой 4xx и нечитаемое тело означают отсутствие отчёта.
func (c *client) FetchReport(ctx context.Context, sceneID string) (*domain.OptimizationReport, error) {
	return c.reportBreaker.Execute(func() (*domain.OptimizationReport, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.reportURL(sceneID), nil)
		if err != nil {
			return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch report %s: %w", sceneID, err)
		}
		defer resp.Body.Close()

		if unavailable(resp.StatusCode) {
			return nil, fmt.Errorf("%w: report %s status %d", ErrServerUnavailable, sceneID, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil, nil
		}

		var data map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || data == nil {
			c.logger.Debug("Malformed optimization report, treating as absent",
				zap.String("scene_id", sceneID),
				zap.Error(err))
			return nil, nil
		}

		return parseReport(sceneID, data), nil
	})
}

func unavailable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// parseReport: success приводится к false, если поле отсутствует или не bool
func parseReport(sceneID string, data map[string]any) *domain.OptimizationReport {
	report := &domain.OptimizationReport{
		SceneID: sceneID,
		Details: data,
	}
	if success, ok := data["success"].(bool); ok {
		report.Success = success
	}
	if ts, ok := data["timestamp"].(string); ok {
		report.Timestamp = ts
	}
	switch e := data["error"].(type) {
	case string:
		report.Error = e
	case nil:
	default:
		if b, err := json.Marshal(e); err == nil {
			report.Error = string(b)
		}
	}
	return report
}
