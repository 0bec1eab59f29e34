package handler

import (
	"net/http"

	"github.com/baro-ai/legal-api/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler handles liveness requests.
type HealthHandler struct {
	app     string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(app, version string) *HealthHandler {
	return &HealthHandler{app: app, version: version}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"app":     h.app,
		"version": h.version,
	})
}

// ReadyHandler handles readiness check requests.
type ReadyHandler struct {
	classifier *service.Classifier
	logger     *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(classifier *service.Classifier, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		classifier: classifier,
		logger:     logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. It answers 503 until the model is
// loaded and healthy.
func (h *ReadyHandler) Handle(c *gin.Context) {
	if err := h.classifier.Ready(c.Request.Context()); err != nil {
		abortWith(c, err)
		return
	}
	version, err := h.classifier.ModelVersion()
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"model_version": version,
	})
}

// Root processes GET / with a map of the public endpoints.
func Root(app, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to " + app,
			"version": version,
			"endpoints": gin.H{
				"health":       "GET /health",
				"ready":        "GET /ready",
				"analyze":      "POST /legal/analyze",
				"fir_classify": "POST /legal/fir-classify",
				"predict":      "POST /predict",
				"search":       "GET /search?q=...",
				"user":         "GET /users/{user_id}",
			},
		})
	}
}
