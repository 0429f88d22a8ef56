package middleware

import (
	"time"

	"github.com/Alwanly/service-env-state/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CanonicalLoggerMiddleware emits one log entry per request carrying every
// field the handlers and usecases added to the request LogContext.
func CanonicalLoggerMiddleware(log *logger.CanonicalLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logCtx := logger.NewLogContext()
		c.Locals(logger.LocalsKey, logCtx)
		ctx := logger.WithLogContext(c.UserContext(), logCtx)

		// the request id doubles as the correlation id of any change the request causes
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			logCtx.AddField(zap.String(logger.FieldRequestID, id))
			ctx = logger.WithCorrelationID(ctx, id)
		}
		c.SetUserContext(ctx)

		start := time.Now()
		defer func() {
			duration := time.Since(start)
			status := c.Response().StatusCode()

			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			}
			if etag := string(c.Response().Header.Peek(fiber.HeaderETag)); etag != "" {
				fields = append(fields, logger.ETag(etag))
			}
			fields = append(fields, logCtx.Fields()...)

			switch {
			case status >= 500:
				log.Error("http_request", fields...)
			case status >= 400:
				log.Info("http_request_client_error", fields...)
			default:
				log.Info("http_request", fields...)
			}
		}()

		return c.Next()
	}
}
