// Package server exposes the wizard and document actions to the UI
// collaborator over HTTP.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/delivery"
	"github.com/abinmathew/leave-letter-assistant/internal/session"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wires the HTTP action surface.
type Server struct {
	engine     *wizard.Engine
	lifecycle  *session.Lifecycle
	dispatcher *delivery.Dispatcher
	catalog    *catalog.Catalog
	aiTimeout  time.Duration
	logger     *zap.Logger

	// One synchronous operation per session at a time; sessions are
	// independent of one another.
	locks sync.Map
}

// New builds the server.
func New(engine *wizard.Engine, lifecycle *session.Lifecycle, dispatcher *delivery.Dispatcher, cat *catalog.Catalog, aiTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		engine:     engine,
		lifecycle:  lifecycle,
		dispatcher: dispatcher,
		catalog:    cat,
		aiTimeout:  aiTimeout,
		logger:     logger,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(s.logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "leave-letter-assistant",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.POST("/sessions/:id/answer", s.submitAnswer)
		api.POST("/sessions/:id/back", s.goBack)
		api.POST("/sessions/:id/signature", s.uploadSignature)
		api.POST("/sessions/:id/compose", s.compose)
		api.GET("/sessions/:id/document", s.download)
		api.POST("/sessions/:id/send", s.send)
		api.POST("/sessions/:id/regenerate", s.regenerate)
		api.POST("/sessions/:id/reset", s.reset)
	}

	return router
}

// lock serializes operations on one session.
func (s *Server) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the UI collaborator.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
