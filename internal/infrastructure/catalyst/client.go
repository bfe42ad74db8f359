// Package catalyst - HTTP клиент каталога контента и индекса миров.
package catalyst

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/retry"
)

const maxErrorBody = 512

type directoryClient struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

// NewDirectoryClient создаёт клиент каталога активных сцен
func NewDirectoryClient(cfg *config.DirectoryConfig, logger *zap.Logger) repository.SceneRepository {
	return &directoryClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		url:    cfg.URL,
		logger: logger,
	}
}

type pointersRequest struct {
	Pointers []string `json:"pointers"`
}

// FetchScenes отправляет POST {pointers} и возвращает найденные сцены.
// 5xx, 429 и сетевые ошибки возвращаются как временные, остальные - как retry.Permanent.
func (c *directoryClient) FetchScenes(ctx context.Context, pointers []string) ([]domain.Scene, error) {
	if len(pointers) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(pointersRequest{Pointers: pointers})
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to marshal pointers: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Fetching scenes from directory",
		zap.Int("pointers", len(pointers)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("directory", resp)
	}

	var scenes []domain.Scene
	if err := json.NewDecoder(resp.Body).Decode(&scenes); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode directory response: %w", err))
	}

	c.logger.Debug("Directory request successful",
		zap.Int("pointers", len(pointers)),
		zap.Int("scenes", len(scenes)))

	return scenes, nil
}

type worldsClient struct {
	httpClient *http.Client
	url        string
	logger     *zap.Logger
}

// NewWorldsClient создаёт клиент индекса миров
func NewWorldsClient(cfg *config.WorldsConfig, logger *zap.Logger) repository.WorldsRepository {
	return &worldsClient{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		url:    cfg.URL,
		logger: logger,
	}
}

type worldsIndex struct {
	Data []domain.World `json:"data"`
}

func (c *worldsClient) FetchWorlds(ctx context.Context) ([]domain.World, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("worlds", resp)
	}

	var index worldsIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode worlds index: %w", err))
	}

	c.logger.Debug("Worlds index fetched", zap.Int("worlds", len(index.Data)))
	return index.Data, nil
}

func statusError(api string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := fmt.Errorf("%s API error: status %d, body: %s", api, resp.StatusCode, string(body))
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return err
	}
	return retry.Permanent(err)
}
