package model

import (
	"context"
	"time"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/baro-ai/legal-api/internal/rules"
	"go.uber.org/zap"
)

// KeywordModel implements Model with ordered keyword rules.
type KeywordModel struct {
	cases   *rules.Engine
	crimes  *rules.Engine
	text    *rules.Engine
	version string
	logger  *zap.Logger
}

// Options configures model loading.
type Options struct {
	// Version is reported by the loaded model.
	Version string

	// WarmUp simulates the time a real model needs to load.
	WarmUp time.Duration
}

// NewKeywordModel creates a keyword model over the built-in rule sets.
func NewKeywordModel(version string, logger *zap.Logger) *KeywordModel {
	return &KeywordModel{
		cases:   rules.NewEngine(rules.CaseRules(), logger),
		crimes:  rules.NewEngine(rules.CrimeRules(), logger),
		text:    rules.NewEngine(rules.SpamRules(), logger),
		version: version,
		logger:  logger.Named("keyword_model"),
	}
}

// Load constructs the model once, waiting out the warm-up period.
// It returns early with an error if ctx is cancelled first.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*KeywordModel, error) {
	logger.Info("loading legal model", zap.String("version", opts.Version))
	startTime := time.Now()

	if opts.WarmUp > 0 {
		timer := time.NewTimer(opts.WarmUp)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, domain.WrapError("load_model", ctx.Err())
		case <-timer.C:
		}
	}

	m := NewKeywordModel(opts.Version, logger)
	logger.Info("legal model loaded",
		zap.String("version", opts.Version),
		zap.Duration("duration", time.Since(startTime)),
	)
	return m, nil
}

// ClassifyCase predicts the legal category of a case.
func (m *KeywordModel) ClassifyCase(text string) domain.Prediction {
	m.logger.Debug("classify case", zap.Int("text_length", len(text)))
	return m.cases.Classify(text)
}

// ClassifyIncident predicts the crime type of an incident.
func (m *KeywordModel) ClassifyIncident(description string) domain.Prediction {
	m.logger.Debug("classify incident", zap.Int("text_length", len(description)))
	return m.crimes.Classify(description)
}

// ClassifyText labels text as spam or ham.
func (m *KeywordModel) ClassifyText(text string) domain.Prediction {
	m.logger.Debug("classify text", zap.Int("text_length", len(text)))
	return m.text.Classify(text)
}

// Version returns the model version.
func (m *KeywordModel) Version() string {
	return m.version
}

// HealthCheck always succeeds once the model is constructed.
func (m *KeywordModel) HealthCheck(ctx context.Context) error {
	return nil
}
