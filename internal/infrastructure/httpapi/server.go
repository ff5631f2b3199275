// Package httpapi exposes the processing pipeline over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const requestIDHeader = "X-Request-Id"

// Server wraps the echo engine and its route handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// NewServer builds the engine, installs middleware, and mounts routes.
func NewServer(addr string, h *Handler, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestID())
	e.Use(requestLogging(logger))
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.POST("/process", h.Process)
	api.POST("/batch-process", h.BatchProcess)
	api.POST("/fetch-and-process", h.FetchAndProcess)
	api.GET("/top-headlines", h.TopHeadlines)
	api.GET("/health", h.Health)
	api.POST("/chat", h.Chat)

	return &Server{echo: e, addr: addr, logger: logger}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestID tags every request, generating an id when the caller did
// not supply one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set("request_id", id)
			c.Response().Header().Set(requestIDHeader, id)
			return next(c)
		}
	}
}

func requestLogging(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", c.Get("request_id"),
			}
			if v.Error != nil {
				args = append(args, "err", v.Error)
				logger.Error("request failed", args...)
				return nil
			}
			logger.Info("request completed", args...)
			return nil
		},
	})
}
