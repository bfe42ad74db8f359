package middleware_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/delivery/http/middleware"
)

func newProtectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Logger(zap.NewNop()))
	app.Post("/protected", middleware.SharedSecret(secret), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestSharedSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		body   string
		want   int
	}{
		{name: "header", secret: "s3cret", header: "s3cret", want: fiber.StatusOK},
		{name: "body field", secret: "s3cret", body: `{"secret":"s3cret","queueDepth":3}`, want: fiber.StatusOK},
		{name: "wrong header", secret: "s3cret", header: "nope", body: `{"secret":"s3cret"}`, want: fiber.StatusUnauthorized},
		{name: "missing", secret: "s3cret", want: fiber.StatusUnauthorized},
		{name: "invalid body", secret: "s3cret", body: `{`, want: fiber.StatusUnauthorized},
		{name: "not configured", secret: "", header: "", body: `{"secret":""}`, want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.secret)

			req := httptest.NewRequest(fiber.MethodPost, "/protected", strings.NewReader(tt.body))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			if tt.header != "" {
				req.Header.Set(middleware.AuthHeader, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Recovery(zap.NewNop()))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
