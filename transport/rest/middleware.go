package rest

import (
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			s.auditor.Info(c.Request().Context(), "http request", map[string]any{
				"method":      c.Request().Method,
				"path":        c.Path(),
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			return err
		}
	}
}
