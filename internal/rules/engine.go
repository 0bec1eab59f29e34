package rules

import (
	"github.com/baro-ai/legal-api/internal/domain"
	"go.uber.org/zap"
)

// Engine applies an ordered rule set to text.
type Engine struct {
	set    Set
	logger *zap.Logger
}

// NewEngine creates a new rule engine for the provided rule set.
func NewEngine(set Set, logger *zap.Logger) *Engine {
	return &Engine{
		set:    set,
		logger: logger.Named("rule_engine").With(zap.String("rule_set", set.Name)),
	}
}

// Classify returns the label of the first matching rule, or the set default.
// It has no side effects beyond debug logging.
func (e *Engine) Classify(text string) domain.Prediction {
	for _, rule := range e.set.Rules {
		if rule.Match(text) {
			e.logger.Debug("rule matched",
				zap.String("rule_id", rule.ID),
				zap.Float64("confidence", rule.Confidence),
			)
			return domain.Prediction{
				Label:      rule.Label,
				Confidence: rule.Confidence,
			}
		}
	}

	e.logger.Debug("no rule matched, using default",
		zap.String("label", e.set.DefaultLabel),
	)
	return domain.Prediction{
		Label:      e.set.DefaultLabel,
		Confidence: e.set.DefaultConfidence,
	}
}
