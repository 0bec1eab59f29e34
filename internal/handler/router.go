package handler

import (
	"time"

	"github.com/baro-ai/legal-api/internal/config"
	"github.com/baro-ai/legal-api/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Config     *config.Config
	Classifier *service.Classifier
	Registry   *prometheus.Registry
	Logger     *zap.Logger
}

// NewRouter builds the engine with the full middleware chain and routes.
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. Logging: entry/exit lines and X-Process-Time
//  3. OpenTelemetry and Metrics: observe the final status
//  4. ErrorHandler: dispatch boundary, renders every failure below it
//  5. CORS
//  6. Rate limiter (when enabled)
//  7. API key auth on the /legal group
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger
	setupValidator()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	_ = r.SetTrustedProxies(nil)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := NewMetrics(reg)

	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(metrics.Handler())
	r.Use(ErrorHandler(logger, metrics))
	r.Use(corsMiddleware(cfg.CORS))
	if cfg.RateLimit.Enabled {
		r.Use(NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler())
	}

	r.NoRoute(NotFound)
	r.NoMethod(MethodNotAllowed)

	health := NewHealthHandler(cfg.App.Name, cfg.App.Version)
	ready := NewReadyHandler(deps.Classifier, logger)
	legal := NewLegalHandler(deps.Classifier, logger)
	predict := NewPredictHandler(deps.Classifier, PredictConfig{
		MaxTextLength:    cfg.Model.MaxPredictionLength,
		DefaultThreshold: cfg.Model.DefaultConfidenceThreshold,
	}, logger)

	r.GET("/", Root(cfg.App.Name, cfg.App.Version))
	r.GET("/health", health.Handle)
	r.GET("/ready", ready.Handle)
	r.GET("/metrics", metrics.Expose())

	legalGroup := r.Group("/legal", APIKeyAuth(cfg.Auth.APIKeys, logger))
	{
		legalGroup.POST("/analyze", legal.Analyze)
		legalGroup.POST("/fir-classify", legal.ClassifyFIR)
	}

	r.POST("/predict", predict.Predict)
	r.POST("/predict/:model_name", predict.PredictWithModel)
	r.GET("/search", Search)
	r.GET("/users/:user_id", GetUser)
	r.GET("/error-demo", ErrorDemo)

	return r
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", HeaderAPIKey, HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID, HeaderProcessTime, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(c)
}
