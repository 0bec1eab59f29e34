package handler

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/baro-ai/legal-api/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// labelUncertain replaces a prediction whose confidence falls below the
// requested threshold.
const labelUncertain = "uncertain"

// PredictConfig contains /predict request limits.
type PredictConfig struct {
	MaxTextLength    int
	DefaultThreshold float64
}

// PredictHandler serves the text classification demo routes.
type PredictHandler struct {
	classifier *service.Classifier
	config     PredictConfig
	logger     *zap.Logger
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(classifier *service.Classifier, config PredictConfig, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		classifier: classifier,
		config:     config,
		logger:     logger.Named("predict_handler"),
	}
}

type modelURI struct {
	ModelName string `uri:"model_name" binding:"required,max=64"`
}

type thresholdQuery struct {
	Threshold float64 `form:"threshold,default=0.5" binding:"gte=0,lte=1"`
}

// Predict processes POST /predict requests.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req domain.PredictionRequest
	if err := bindJSON(c, &req); err != nil {
		abortWith(c, err)
		return
	}

	text := strings.TrimSpace(req.Text)
	if n := utf8.RuneCountInString(text); n > h.config.MaxTextLength {
		abortWith(c, domain.ValidationErrors{{
			FieldPath: []string{locBody, "text"},
			Message:   fmt.Sprintf("String should have at most %d characters", h.config.MaxTextLength),
			Type:      "max",
		}})
		return
	}

	version := req.ModelVersion
	if version == "" {
		version = "v1"
	}
	threshold := h.config.DefaultThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}

	prediction, err := h.classifier.ClassifyText(c.Request.Context(), text)
	if err != nil {
		abortWith(c, err)
		return
	}

	label := prediction.Label
	if prediction.Confidence < threshold {
		label = labelUncertain
	}

	h.logger.Debug("text classified",
		zap.String("request_id", requestID(c)),
		zap.String("prediction", label),
		zap.Float64("threshold", threshold),
	)

	c.JSON(http.StatusOK, domain.PredictionResponse{
		Success:      true,
		Prediction:   label,
		Confidence:   prediction.Confidence,
		ModelVersion: version,
	})
}

// PredictWithModel processes POST /predict/:model_name requests. It combines
// a path parameter, a query parameter and an optional body.
func (h *PredictHandler) PredictWithModel(c *gin.Context) {
	var uri modelURI
	if err := bindURI(c, &uri); err != nil {
		abortWith(c, err)
		return
	}

	var query thresholdQuery
	if err := bindQuery(c, &query); err != nil {
		abortWith(c, err)
		return
	}

	var text *string
	if c.Request.ContentLength != 0 {
		var req domain.PredictionRequest
		if err := bindJSON(c, &req); err != nil {
			abortWith(c, err)
			return
		}
		text = &req.Text
	}

	c.JSON(http.StatusOK, gin.H{
		"model_name": uri.ModelName,
		"threshold":  query.Threshold,
		"text":       text,
		"message":    "This combines all three input types!",
	})
}
