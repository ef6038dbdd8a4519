// Package rest serves the HTTP surface: the webhook intake endpoint the
// notificaties service delivers to, the per-user activity feed, and a
// health probe.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-zaaknotify/command"
	"github.com/goliatone/go-zaaknotify/core"
	"github.com/goliatone/go-zaaknotify/query"
)

type Server struct {
	echo      *echo.Echo
	auditor   *core.Auditor
	processor command.NotificationProcessor
	feed      *query.ListCaseActivityQuery
	startedAt time.Time
}

func NewServer(
	processor command.NotificationProcessor,
	feed *query.ListCaseActivityQuery,
	auditor *core.Auditor,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:      e,
		auditor:   auditor,
		processor: processor,
		feed:      feed,
		startedAt: time.Now().UTC(),
	}

	e.Use(server.requestLogger())

	e.GET("/health", server.health)
	v1 := e.Group("/api/v1")
	v1.POST("/notificaties", server.handleNotification)
	v1.GET("/feed/:user_id", server.handleFeed)

	return server
}

// Start blocks until the listener fails or ctx is canceled, then drains
// in-flight requests before returning.
func (s *Server) Start(ctx context.Context, port int) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Handler exposes the underlying mux for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startedAt).String(),
	})
}
