package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tejiriaustin/filemonitor/config"
	"github.com/tejiriaustin/filemonitor/db"
	"github.com/tejiriaustin/filemonitor/logger"
)

const defaultEventsLimit = 100

type (
	Server struct {
		cfg    *config.Config
		server *http.Server
		logger *logger.Logger
	}

	Handler struct {
		logger *logger.Logger
	}
)

func New(cfg *config.Config, logger *logger.Logger) *Server {
	return &Server{
		cfg:    cfg,
		server: &http.Server{Addr: cfg.StatusAddr},
		logger: logger,
	}
}

// Start serves handler until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, handler http.Handler) error {
	s.server.Handler = handler

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	s.logger.Infow("Status server listening", "addr", s.server.Addr)

	select {
	case <-ctx.Done():
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorw("Server forced to shutdown", "error", err)
		return err
	}

	s.logger.Info("Status server stopped")
	return nil
}

func NewHandler(logger *logger.Logger) *Handler {
	return &Handler{logger: logger}
}

// SetupHandler builds the router. journal may be nil when journaling is
// disabled.
func (h *Handler) SetupHandler(journal db.Repository, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(h.loggerMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", h.healthCheck())
	r.GET("/events", h.retrieveEvents(journal))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "not found",
		})
	})

	return r
}

func (h *Handler) healthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive and well",
		})
	}
}

func (h *Handler) retrieveEvents(journal db.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if journal == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event journal is disabled"})
			return
		}

		limit := defaultEventsLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = n
		}

		events, err := journal.GetFileEvents(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}
