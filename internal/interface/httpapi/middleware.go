package httpapi

import (
	"time"

	"flightsched-service/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			req := c.Request()
			log.Info("HTTP request",
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", c.Response().Status,
				"latency", time.Since(start).String())

			return nil
		}
	}
}
