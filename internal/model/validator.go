package model

import (
	"fmt"
	"math"

	"github.com/baro-ai/legal-api/internal/domain"
)

// DefaultValidator implements PredictionValidator with strict range checks.
type DefaultValidator struct{}

// NewDefaultValidator creates a new prediction validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// Validate checks if the prediction conforms to the output contract.
func (v *DefaultValidator) Validate(p domain.Prediction) error {
	if p.Label == "" {
		return domain.WrapError("validate_label",
			fmt.Errorf("%w: label is required", domain.ErrInvalidPrediction))
	}

	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return domain.WrapError("validate_confidence",
			fmt.Errorf("%w: confidence must be between 0 and 1, got: %v",
				domain.ErrInvalidPrediction, p.Confidence))
	}

	return nil
}
