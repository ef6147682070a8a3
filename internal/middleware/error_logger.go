package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxLoggedBody = 500

// ErrorLogger logs 4xx responses at warn and 5xx responses at error level.
func ErrorLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		if status < fiber.StatusBadRequest {
			return err
		}

		fields := []zap.Field{
			zap.Int("status_code", status),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if id := CurrentUserID(c); id != 0 {
			fields = append(fields, zap.Uint("user_id", id))
		}
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			fields = append(fields, zap.ByteString("query", q))
		}
		if body := c.Response().Body(); len(body) > 0 && len(body) <= maxLoggedBody {
			fields = append(fields, zap.ByteString("response_body", body))
		}

		if status >= fiber.StatusInternalServerError {
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Error("Server error response", fields...)
		} else {
			log.Warn("Client error response", fields...)
		}
		return err
	}
}
