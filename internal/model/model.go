// Package model provides the classification model interface and its
// keyword-based implementation.
package model

import (
	"context"

	"github.com/baro-ai/legal-api/internal/domain"
)

// Model defines the classification operations handlers depend on.
// Implementations must be safe for concurrent use.
type Model interface {
	// ClassifyCase predicts the area of law for a case description.
	ClassifyCase(text string) domain.Prediction

	// ClassifyIncident predicts the IPC section for an incident description.
	ClassifyIncident(description string) domain.Prediction

	// ClassifyText labels free text as spam or ham.
	ClassifyText(text string) domain.Prediction

	// Version identifies the loaded model.
	Version() string

	// HealthCheck verifies the model can serve predictions.
	HealthCheck(ctx context.Context) error
}

// PredictionValidator checks model output before it reaches a client.
type PredictionValidator interface {
	// Validate returns an error if the prediction breaks the output contract.
	Validate(p domain.Prediction) error
}
