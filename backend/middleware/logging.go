package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

func LoggingMiddleware(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		// Передаем управление следующему обработчику
		err := c.Next()

		status := c.Response().StatusCode()
		fields := []interface{}{
			"request_id", requestID,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"user_agent", c.Get(fiber.HeaderUserAgent),
		}
		if err != nil {
			fields = append(fields, "error", err)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Errorw("request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warnw("request", fields...)
		default:
			logger.Infow("request", fields...)
		}

		return err
	}
}
