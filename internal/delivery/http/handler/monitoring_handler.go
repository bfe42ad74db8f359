package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/pkg/errors"
	"github.com/optimization-report/internal/pkg/utils"
	"github.com/optimization-report/internal/pkg/validator"
)

// MonitoringService - мониторинг потребителей пайплайна
type MonitoringService interface {
	Heartbeat(ctx context.Context, hb domain.Heartbeat) error
	CompleteJob(ctx context.Context, job domain.JobCompletion) error
	QueueMetrics(ctx context.Context, depth int) error
	Status(ctx context.Context) (*domain.MonitoringStatus, error)
	Ranking(ctx context.Context) ([]domain.RankingEntry, error)
}

// QueueMetricsRequest - замер глубины очереди
type QueueMetricsRequest struct {
	QueueDepth *int `json:"queueDepth" validate:"required,gte=0"`
}

// MonitoringHandler обрабатывает запросы мониторинга
type MonitoringHandler struct {
	monitoring MonitoringService
	logger     *zap.Logger
}

// NewMonitoringHandler создает новый экземпляр MonitoringHandler
func NewMonitoringHandler(monitoring MonitoringService, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		monitoring: monitoring,
		logger:     logger,
	}
}

// Heartbeat godoc
// @Summary Consumer heartbeat
// @Tags Monitoring
// @Accept json
// @Produce json
// @Param X-Auth-Token header string false "Monitoring secret"
// @Param request body domain.Heartbeat true "Heartbeat"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/monitoring/heartbeat [post]
func (h *MonitoringHandler) Heartbeat(c *fiber.Ctx) error {
	var hb domain.Heartbeat
	if err := c.BodyParser(&hb); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.ValidateRequest(&hb); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.monitoring.Heartbeat(c.Context(), hb); err != nil {
		h.logger.Error("Failed to store heartbeat", zap.String("consumer_id", hb.ConsumerID), zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}
	return utils.SendSuccess(c, fiber.Map{"ok": true}, nil)
}

// JobComplete godoc
// @Summary Job completion
// @Tags Monitoring
// @Accept json
// @Produce json
// @Param X-Auth-Token header string false "Monitoring secret"
// @Param request body domain.JobCompletion true "Completed job"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/monitoring/job-complete [post]
func (h *MonitoringHandler) JobComplete(c *fiber.Ctx) error {
	var job domain.JobCompletion
	if err := c.BodyParser(&job); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.ValidateRequest(&job); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.monitoring.CompleteJob(c.Context(), job); err != nil {
		h.logger.Error("Failed to store job completion", zap.String("consumer_id", job.ConsumerID), zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}
	return utils.SendSuccess(c, fiber.Map{"ok": true}, nil)
}

// QueueMetrics godoc
// @Summary Queue depth sample
// @Tags Monitoring
// @Accept json
// @Produce json
// @Param X-Auth-Token header string false "Monitoring secret"
// @Param request body QueueMetricsRequest true "Queue depth"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/monitoring/queue-metrics [post]
func (h *MonitoringHandler) QueueMetrics(c *fiber.Ctx) error {
	var req QueueMetricsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.ValidateRequest(&req); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.monitoring.QueueMetrics(c.Context(), *req.QueueDepth); err != nil {
		h.logger.Error("Failed to store queue metrics", zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}
	return utils.SendSuccess(c, fiber.Map{"ok": true}, nil)
}

// GetStatus godoc
// @Summary Monitoring dashboard state
// @Description Активные потребители (offline после 30s без heartbeat), очередь и недавние задачи
// @Tags Monitoring
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.MonitoringStatus}
// @Router /api/v1/monitoring/status [get]
func (h *MonitoringHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.monitoring.Status(c.Context())
	if err != nil {
		h.logger.Error("Failed to build monitoring status", zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SendSuccess(c, status, nil)
}

// GetRanking godoc
// @Summary Slowest successful jobs
// @Tags Monitoring
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]domain.RankingEntry}
// @Router /api/v1/monitoring/ranking [get]
func (h *MonitoringHandler) GetRanking(c *fiber.Ctx) error {
	ranking, err := h.monitoring.Ranking(c.Context())
	if err != nil {
		h.logger.Error("Failed to build ranking", zap.Error(err))
		return utils.SendError(c, errors.ErrDatabaseError)
	}
	return utils.SendSuccess(c, ranking, &utils.Meta{Total: len(ranking)})
}
