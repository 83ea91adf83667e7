package rest

import (
	"time"

	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/labstack/echo"
)

// requestLogger writes one access log record per request.
func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.Info(req.Context(), "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"size", c.Response().Size,
				"latency", time.Since(start).String(),
			)
			return nil
		}
	}
}
