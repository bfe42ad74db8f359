package middleware

import (
	"crypto/subtle"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/optimization-report/internal/pkg/errors"
	"github.com/optimization-report/internal/pkg/utils"
)

// AuthHeader - заголовок с общим секретом
const AuthHeader = "X-Auth-Token"

// SharedSecret пропускает запрос, если секрет совпал.
// Секрет берётся из X-Auth-Token, иначе из поля "secret" JSON-тела.
// Пустой настроенный секрет закрывает эндпоинт полностью.
func SharedSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return utils.SendError(c, errors.ErrUnauthorized)
		}

		provided := c.Get(AuthHeader)
		if provided == "" {
			var body struct {
				Secret string `json:"secret"`
			}
			if len(c.Body()) > 0 && json.Unmarshal(c.Body(), &body) == nil {
				provided = body.Secret
			}
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return utils.SendError(c, errors.ErrUnauthorized)
		}
		return c.Next()
	}
}
