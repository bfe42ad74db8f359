package handler

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/grid"
	"github.com/optimization-report/internal/pkg/errors"
	"github.com/optimization-report/internal/pkg/utils"
)

const reportCacheControl = "public, max-age=300"

// ReportReader - чтение опубликованного артефакта
type ReportReader interface {
	Latest(ctx context.Context) ([]byte, error)
	LatestReport(ctx context.Context) (*domain.CompressedReport, error)
	Metadata(ctx context.Context) (*domain.ReportMetadata, error)
}

// PendingResponse - ответ, пока не опубликован ни один отчёт
type PendingResponse struct {
	Status  string `json:"status" example:"pending"`
	Message string `json:"message" example:"no report yet, check back later"`
}

// ReportHandler обрабатывает запросы к опубликованному отчёту
type ReportHandler struct {
	reports ReportReader
	bounds  domain.GridBounds
	logger  *zap.Logger
}

// NewReportHandler создает новый экземпляр ReportHandler
func NewReportHandler(reports ReportReader, bounds domain.GridBounds, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		bounds:  bounds,
		logger:  logger,
	}
}

// GetReport godoc
// @Summary Latest optimization report
// @Description Возвращает последний опубликованный сжатый артефакт как есть. Пока отчёта нет - заглушка со статусом pending.
// @Tags Report
// @Produce json
// @Success 200 {object} domain.CompressedReport
// @Success 200 {object} PendingResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/report [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	body, err := h.reports.Latest(c.Context())
	if err != nil {
		if stderrors.Is(err, domain.ErrNotFound) {
			return c.JSON(PendingResponse{
				Status:  "pending",
				Message: "no report yet, check back later",
			})
		}
		h.logger.Error("Failed to read latest report", zap.Error(err))
		return utils.SendError(c, errors.ErrStorageError)
	}

	return utils.SendRaw(c, body, reportCacheControl)
}

// GetLand godoc
// @Summary Land status
// @Description Состояние одного участка по координатам из последнего отчёта
// @Tags Report
// @Produce json
// @Param x path int true "X coordinate"
// @Param y path int true "Y coordinate"
// @Success 200 {object} utils.SuccessResponse{data=domain.Land}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/report/lands/{x}/{y} [get]
func (h *ReportHandler) GetLand(c *fiber.Ctx) error {
	x, errX := strconv.Atoi(c.Params("x"))
	y, errY := strconv.Atoi(c.Params("y"))
	if errX != nil || errY != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}
	coord := domain.Coordinate{X: x, Y: y}
	if !h.bounds.Contains(coord) {
		return utils.SendError(c, errors.ErrLandNotFound)
	}

	report, err := h.reports.LatestReport(c.Context())
	if err != nil {
		if stderrors.Is(err, domain.ErrNotFound) {
			return utils.SendError(c, errors.ErrReportNotFound)
		}
		h.logger.Error("Failed to read latest report", zap.Error(err))
		return utils.SendError(c, errors.ErrStorageError)
	}

	world := grid.Decompress(h.bounds, report)
	land, ok := world.Land(coord)
	if !ok {
		return utils.SendError(c, errors.ErrLandNotFound)
	}

	return utils.SendSuccess(c, land, nil)
}

// GetStatus godoc
// @Summary Latest publication metadata
// @Description Метаданные последней публикации (время, статистика, ссылки)
// @Tags Report
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.ReportMetadata}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/status [get]
func (h *ReportHandler) GetStatus(c *fiber.Ctx) error {
	meta, err := h.reports.Metadata(c.Context())
	if err != nil {
		if stderrors.Is(err, domain.ErrNotFound) {
			return utils.SendError(c, errors.ErrReportNotFound)
		}
		h.logger.Error("Failed to read report metadata", zap.Error(err))
		return utils.SendError(c, errors.ErrStorageError)
	}

	return utils.SendSuccess(c, meta, nil)
}
