// Package api exposes the prediction batch and snapshot operations over HTTP.
package api

import (
	"context"
	"net/http"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/models"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchRunner is the orchestrator surface the API drives.
type BatchRunner interface {
	RunBatch(ctx context.Context, requests []models.PredictionRequest) (*orchestrator.BatchRun, error)
	Cancel()
	View() orchestrator.View
}

type SnapshotStore interface {
	Save(ctx context.Context, name string, payload models.FormPayload, results map[string]models.Outcome) (string, error)
	List(ctx context.Context) ([]models.BatchSnapshot, error)
	Load(ctx context.Context, id string) (models.BatchSnapshot, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Runner    BatchRunner
	Snapshots SnapshotStore
	Catalog   *registry.RegionCatalog
	Ready     ReadinessCheck
	Metrics   bool
	Logger    logger.Logger
	Service   string
	Version   string
}

type Server struct {
	runner    BatchRunner
	snapshots SnapshotStore
	catalog   *registry.RegionCatalog
	ready     ReadinessCheck
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
	service   string
	version   string
}

func NewServer(deps Dependencies) *Server {
	log := logger.ForComponent(deps.Logger, "api")
	return &Server{
		runner:    deps.Runner,
		snapshots: deps.Snapshots,
		catalog:   deps.Catalog,
		ready:     deps.Ready,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
		service:   deps.Service,
		version:   deps.Version,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	s := NewServer(deps)

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	if deps.Metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/regions", s.handleRegions)

		batches := api.Group("/batches")
		{
			batches.POST("", s.handleStartBatch)
			batches.GET("/current", s.handleCurrentBatch)
			batches.DELETE("/current", s.handleCancelBatch)
			batches.GET("/current/report", s.handleCurrentReport)
		}

		snapshots := api.Group("/snapshots")
		{
			snapshots.POST("", s.handleSaveSnapshot)
			snapshots.GET("", s.handleListSnapshots)
			snapshots.DELETE("", s.handleClearSnapshots)
			snapshots.GET("/:id", s.handleGetSnapshot)
			snapshots.DELETE("/:id", s.handleDeleteSnapshot)
			snapshots.GET("/:id/report", s.handleSnapshotReport)
		}
	}
	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.service,
		"version": s.version,
	})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(c.Request.Context()); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleRegions(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusOK, gin.H{"regions": []registry.Region{}})
		return
	}
	c.JSON(http.StatusOK, s.catalog)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request handled", map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		})
	}
}
