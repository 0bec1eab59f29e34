// Package domain contains the core domain models and types.
// These models represent the API contracts and are independent
// of any infrastructure concerns.
package domain

// Level is a low/medium/high rating used for case urgency and incident severity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// CaseRequest is the body of POST /legal/analyze.
type CaseRequest struct {
	// CaseText is the legal case description.
	CaseText string `json:"case_text" binding:"required,min=10,max=500"`

	// Urgency defaults to medium when omitted. An explicit empty string or
	// null is rejected.
	Urgency *Level `json:"urgency" binding:"omitnil,oneof=low medium high"`
}

// CaseResponse is the result of case analysis.
type CaseResponse struct {
	Success    bool    `json:"success"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Urgency    Level   `json:"urgency"`
}

// FIRRequest is the body of POST /legal/fir-classify.
type FIRRequest struct {
	// Description is the incident description.
	Description string `json:"description" binding:"required,min=10,max=1000"`

	// Location is where the incident occurred.
	Location string `json:"location" binding:"required,min=2,max=100"`

	// Severity defaults to medium when omitted. An explicit empty string or
	// null is rejected.
	Severity *Level `json:"severity" binding:"omitnil,oneof=low medium high"`
}

// FIRResponse is the result of FIR classification.
type FIRResponse struct {
	Success    bool    `json:"success"`
	CrimeType  string  `json:"crime_type"`
	Confidence float64 `json:"confidence"`
	Severity   Level   `json:"severity"`
}

// PredictionRequest is the body of POST /predict.
type PredictionRequest struct {
	Text                string   `json:"text" binding:"required,min=1,max=1000,notblank"`
	ModelVersion        string   `json:"model_version"`
	ConfidenceThreshold *float64 `json:"confidence_threshold" binding:"omitempty,gte=0,lte=1"`
}

// PredictionResponse is the result of POST /predict.
type PredictionResponse struct {
	Success      bool    `json:"success"`
	Prediction   string  `json:"prediction"`
	Confidence   float64 `json:"confidence"`
	ModelVersion string  `json:"model_version"`
}

// Prediction is a single label produced by the classification model.
type Prediction struct {
	// Label is the predicted category, crime type, or text class.
	Label string

	// Confidence is in [0, 1].
	Confidence float64
}

// UserURI binds GET /users/{user_id}.
type UserURI struct {
	UserID int `uri:"user_id" binding:"gt=0"`
}

// User is the stub user record.
type User struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// SearchQuery binds GET /search.
type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=1,max=50"`
	Page  int    `form:"page,default=1" binding:"gte=1,lte=100"`
	Limit int    `form:"limit,default=10" binding:"gte=1,lte=100"`
}

// SearchResult is one stub search hit.
type SearchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// SearchResponse is the paginated stub result set.
type SearchResponse struct {
	Query        string         `json:"query"`
	Page         int            `json:"page"`
	Limit        int            `json:"limit"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// ErrorDetail is one entry of the validation error envelope.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse is the uniform envelope for every failure.
type ErrorResponse struct {
	Error   bool          `json:"error"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Path    string        `json:"path"`
}
