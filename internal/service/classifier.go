// Package service contains the business logic layer.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/baro-ai/legal-api/internal/model"
	"github.com/baro-ai/legal-api/pkg/sanitizer"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request identifier stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Classifier runs model predictions on a bounded worker pool so a slow
// model never occupies more than Workers goroutines at once.
type Classifier struct {
	model     model.Model
	validator model.PredictionValidator
	sanitizer *sanitizer.Sanitizer
	workers   *semaphore.Weighted
	logger    *zap.Logger
}

// ClassifierConfig contains configuration for the Classifier.
type ClassifierConfig struct {
	Workers int
}

// NewClassifier creates a new Classifier. m may be nil when the model is not
// loaded; every prediction then fails with ResourceUnavailable.
func NewClassifier(
	m model.Model,
	validator model.PredictionValidator,
	sanitizer *sanitizer.Sanitizer,
	config ClassifierConfig,
	logger *zap.Logger,
) *Classifier {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &Classifier{
		model:     m,
		validator: validator,
		sanitizer: sanitizer,
		workers:   semaphore.NewWeighted(int64(workers)),
		logger:    logger.Named("classifier"),
	}
}

// ClassifyCase predicts the legal category of a case description.
func (c *Classifier) ClassifyCase(ctx context.Context, text string) (domain.Prediction, error) {
	return c.run(ctx, "classify_case", text, model.Model.ClassifyCase)
}

// ClassifyIncident predicts the crime type of an incident description.
func (c *Classifier) ClassifyIncident(ctx context.Context, description string) (domain.Prediction, error) {
	return c.run(ctx, "classify_incident", description, model.Model.ClassifyIncident)
}

// ClassifyText labels free text as spam or ham.
func (c *Classifier) ClassifyText(ctx context.Context, text string) (domain.Prediction, error) {
	return c.run(ctx, "classify_text", text, model.Model.ClassifyText)
}

// ModelVersion returns the loaded model's version.
func (c *Classifier) ModelVersion() (string, error) {
	if c.model == nil {
		return "", domain.ResourceUnavailable()
	}
	return c.model.Version(), nil
}

// Ready reports whether predictions can be served.
func (c *Classifier) Ready(ctx context.Context) error {
	if c.model == nil {
		return domain.ResourceUnavailable()
	}
	if err := c.model.HealthCheck(ctx); err != nil {
		c.logger.Warn("model health check failed", zap.Error(err))
		return domain.ResourceUnavailable()
	}
	return nil
}

type outcome struct {
	prediction domain.Prediction
	err        error
}

// run offloads one prediction onto the worker pool and validates the result.
func (c *Classifier) run(
	ctx context.Context,
	op string,
	text string,
	predict func(model.Model, string) domain.Prediction,
) (domain.Prediction, error) {
	if c.model == nil {
		return domain.Prediction{}, domain.ResourceUnavailable()
	}

	startTime := time.Now()
	logger := c.logger.With(
		zap.String("request_id", RequestIDFrom(ctx)),
		zap.String("op", op),
	)
	logger.Debug("starting classification", zap.String("text", c.sanitizer.Preview(text)))

	if err := c.workers.Acquire(ctx, 1); err != nil {
		return domain.Prediction{}, domain.WrapError("acquire_worker", err)
	}

	done := make(chan outcome, 1)
	go func() {
		defer c.workers.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("model panicked: %v", r)}
			}
		}()
		done <- outcome{prediction: predict(c.model, text)}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return domain.Prediction{}, domain.WrapError(op, ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		logger.Error("classification failed", zap.Error(out.err))
		return domain.Prediction{}, domain.ProcessingFailed()
	}

	if err := c.validator.Validate(out.prediction); err != nil {
		logger.Error("model returned invalid prediction", zap.Error(err))
		return domain.Prediction{}, domain.ProcessingFailed()
	}

	logger.Debug("classification completed",
		zap.String("label", out.prediction.Label),
		zap.Float64("confidence", out.prediction.Confidence),
		zap.Duration("duration", time.Since(startTime)),
	)

	return out.prediction, nil
}
