package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/optimization-report/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int     `json:"total,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	TimeMSec float64 `json:"time_ms,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}

// SendRaw отдаёт уже сериализованный JSON без обёртки data
func SendRaw(c *fiber.Ctx, body []byte, cacheControl string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if cacheControl != "" {
		c.Set(fiber.HeaderCacheControl, cacheControl)
	}
	return c.Send(body)
}
