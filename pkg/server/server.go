// Package server wires the gin HTTP server around the query service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	screenlore "github.com/screenlore/go-screenlore"
	"github.com/screenlore/go-screenlore/pkg/config"
	"github.com/screenlore/go-screenlore/pkg/server/handlers"
)

// Server hosts the HTTP API.
type Server struct {
	cfg    *config.Config
	svc    screenlore.Service
	log    *slog.Logger
	engine *gin.Engine
	http   *http.Server
}

// New creates a server over the query service.
func New(cfg *config.Config, svc screenlore.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, svc: svc, log: log}
}

// Setup registers middleware and routes.
func (s *Server) Setup() {
	gin.SetMode(s.cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	health := handlers.NewHealthHandler()
	engine.GET("/health", health.HealthCheck)
	engine.GET("/ready", health.ReadinessCheck)

	query := handlers.NewQueryHandler(s.svc, s.log)
	api := engine.Group("/api")
	{
		api.POST("/query", query.Query)
		api.POST("/query/baseline", query.Baseline)
	}
	engine.POST("/admin/reload", query.Reload)

	s.engine = engine
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	s.log.Info("http server listening", "addr", addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// requestLogger attaches a request id and logs each request's outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		started := time.Now()

		c.Next()

		s.log.Info("request handled",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(started))
	}
}
