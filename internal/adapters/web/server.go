// Package web is the operator HTTP endpoint: readiness and a view of the
// running escalations. It uses the Gin framework.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recruitbot/internal/reminder"
	"recruitbot/pkg/logger"
)

// ReadyChecker reports whether the Discord session is up.
type ReadyChecker interface {
	IsReady() bool
}

// EscalationLister lists running escalations.
type EscalationLister interface {
	Active() []reminder.SessionInfo
}

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	ready       ReadyChecker
	escalations EscalationLister
	log         *logrus.Entry
}

func NewServer(addr string, ready ReadyChecker, escalations EscalationLister) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:      engine,
		ready:       ready,
		escalations: escalations,
		log:         logger.For("WebServer"),
	}
	s.engine.Use(s.logsMiddleware())
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Engine returns the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.healthHandler)
	s.engine.GET("/escalations", s.escalationsHandler)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Not Found",
			"status": http.StatusNotFound,
		})
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.ready == nil || !s.ready.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) escalationsHandler(c *gin.Context) {
	active := s.escalations.Active()
	c.JSON(http.StatusOK, gin.H{
		"count":       len(active),
		"escalations": active,
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("🚀 ops server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("ops server stopped")
	return nil
}
