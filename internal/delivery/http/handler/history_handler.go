package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/pkg/errors"
	"github.com/optimization-report/internal/pkg/utils"
	"github.com/optimization-report/internal/pkg/validator"
)

// HistoryService - журнал запусков
type HistoryService interface {
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Append(ctx context.Context, stats domain.Stats, snapshotKey string, at time.Time) (*domain.HistoryEntry, error)
}

// HistoryItem - запись истории в ответе API
type HistoryItem struct {
	Timestamp time.Time           `json:"timestamp"`
	Summary   domain.HistoryEntry `json:"summary"`
}

// HistoryResponse - ответ GET /history
type HistoryResponse struct {
	Entries []HistoryItem `json:"entries"`
}

// AppendHistoryRequest - ручная загрузка статистики запуска
type AppendHistoryRequest struct {
	Timestamp   *time.Time   `json:"timestamp"`
	Stats       domain.Stats `json:"stats"`
	SnapshotKey string       `json:"snapshotKey" validate:"omitempty,startswith=history/"`
}

// HistoryHandler обрабатывает запросы истории запусков
type HistoryHandler struct {
	history HistoryService
	logger  *zap.Logger
}

// NewHistoryHandler создает новый экземпляр HistoryHandler
func NewHistoryHandler(history HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// GetHistory godoc
// @Summary Run history
// @Description Последние записи истории, новые первыми (не больше срока хранения)
// @Tags History
// @Produce json
// @Param limit query int false "Max entries" default(60)
// @Success 200 {object} utils.SuccessResponse{data=HistoryResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/history [get]
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	entries, err := h.history.List(c.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list history", zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, HistoryItem{Timestamp: e.CreatedAt, Summary: e})
	}

	return utils.SendSuccess(c, HistoryResponse{Entries: items}, &utils.Meta{Total: len(items)})
}

// AppendHistory godoc
// @Summary Append history entry
// @Description Добавляет запись истории вручную. Требует общий секрет загрузки.
// @Tags History
// @Accept json
// @Produce json
// @Param X-Auth-Token header string false "Upload secret (или поле secret в теле)"
// @Param request body AppendHistoryRequest true "Статистика запуска"
// @Success 201 {object} utils.SuccessResponse{data=domain.HistoryEntry}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/history [post]
func (h *HistoryHandler) AppendHistory(c *fiber.Ctx) error {
	var req AppendHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.ValidateRequest(&req); err != nil {
		return utils.SendError(c, err)
	}

	at := time.Now().UTC()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	entry, err := h.history.Append(c.Context(), req.Stats, req.SnapshotKey, at)
	if err != nil {
		h.logger.Error("Failed to append history", zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse{Data: entry})
}
