package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatguard/internal/metrics"
)

// Server is the operational HTTP surface: liveness and Prometheus metrics.
// It carries no moderation functionality.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (s *Server) Run(addr string) {
	s.logger.Info("Ops server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Ops server failed to start", zap.Error(err))
	}
}
