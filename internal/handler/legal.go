package handler

import (
	"net/http"
	"time"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/baro-ai/legal-api/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LegalHandler serves the authenticated /legal routes.
type LegalHandler struct {
	classifier *service.Classifier
	logger     *zap.Logger
}

// NewLegalHandler creates a new LegalHandler.
func NewLegalHandler(classifier *service.Classifier, logger *zap.Logger) *LegalHandler {
	return &LegalHandler{
		classifier: classifier,
		logger:     logger.Named("legal_handler"),
	}
}

// Analyze processes POST /legal/analyze requests.
func (h *LegalHandler) Analyze(c *gin.Context) {
	startTime := time.Now()

	var req domain.CaseRequest
	if err := bindJSON(c, &req); err != nil {
		abortWith(c, err)
		return
	}
	urgency := domain.LevelMedium
	if req.Urgency != nil {
		urgency = *req.Urgency
	}

	prediction, err := h.classifier.ClassifyCase(c.Request.Context(), req.CaseText)
	if err != nil {
		abortWith(c, err)
		return
	}

	h.logger.Info("case analyzed",
		zap.String("request_id", requestID(c)),
		zap.String("category", prediction.Label),
		zap.String("urgency", string(urgency)),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.JSON(http.StatusOK, domain.CaseResponse{
		Success:    true,
		Category:   prediction.Label,
		Confidence: prediction.Confidence,
		Urgency:    urgency,
	})
}

// ClassifyFIR processes POST /legal/fir-classify requests.
func (h *LegalHandler) ClassifyFIR(c *gin.Context) {
	startTime := time.Now()

	var req domain.FIRRequest
	if err := bindJSON(c, &req); err != nil {
		abortWith(c, err)
		return
	}
	severity := domain.LevelMedium
	if req.Severity != nil {
		severity = *req.Severity
	}

	prediction, err := h.classifier.ClassifyIncident(c.Request.Context(), req.Description)
	if err != nil {
		abortWith(c, err)
		return
	}

	h.logger.Info("incident classified",
		zap.String("request_id", requestID(c)),
		zap.String("crime_type", prediction.Label),
		zap.String("severity", string(severity)),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.JSON(http.StatusOK, domain.FIRResponse{
		Success:    true,
		CrimeType:  prediction.Label,
		Confidence: prediction.Confidence,
		Severity:   severity,
	})
}
