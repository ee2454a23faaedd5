package middleware

import (
	"time"

	"FinScreen/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLogging logs every request with its latency and a request id.
// An incoming X-Request-ID header is reused.
func RequestLogging(l *logger.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = logger.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			res.Header().Set(echo.HeaderXRequestID, id)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []logger.Field{
				logger.String("request_id", id),
				logger.String("method", req.Method),
				logger.String("uri", req.RequestURI),
				logger.String("remote", c.RealIP()),
				logger.Int("status", res.Status),
				logger.Duration("latency_ms", time.Since(start)),
			}
			if res.Status >= 500 {
				l.Error("http request failed", append(fields, logger.Error(err))...)
			} else {
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
