// Package rest exposes the items API over HTTP and serves the bundled web UI.
package rest

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/dmitrijs2005/inventory/internal/logging"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

//go:embed web
var webFiles embed.FS

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	echo            *echo.Echo
	logger          logging.Logger
}

func NewServer(address string, shutdownTimeout time.Duration, l logging.Logger, pinger Pinger, items ItemService, exports ExportService) (*Server, error) {
	logger := l.With("module", "http_server")

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", healthz(pinger))
	NewItemHandler(e.Group("/api"), logger, items, exports)

	static, err := fs.Sub(webFiles, "web")
	if err != nil {
		return nil, err
	}
	e.GET("/*", echo.WrapHandler(http.FileServer(http.FS(static))))

	return &Server{address: address, shutdownTimeout: shutdownTimeout, echo: e, logger: logger}, nil
}

// Handler returns the routed HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func healthz(pinger Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := pinger.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	go func() {
		errCh <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
