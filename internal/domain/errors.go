// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPrediction indicates a model produced an out-of-contract result.
	ErrInvalidPrediction = errors.New("invalid prediction")
)

// Kind identifies a domain error variant. The set is closed.
type Kind int

const (
	// KindGeneric is the base kind; the caller supplies the message.
	KindGeneric Kind = iota

	// KindInvalidCredential means the API key is missing or not allowed.
	KindInvalidCredential

	// KindResourceUnavailable means the classification model is not available.
	KindResourceUnavailable

	// KindProcessingFailed means a prediction could not be produced.
	KindProcessingFailed

	// KindRateLimited means the client exceeded its request budget.
	KindRateLimited
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "InvalidCredential"
	case KindResourceUnavailable:
		return "ResourceUnavailable"
	case KindProcessingFailed:
		return "ProcessingFailed"
	case KindRateLimited:
		return "RateLimited"
	default:
		return "Generic"
	}
}

// DefaultStatus returns the HTTP status code a kind maps to.
func (k Kind) DefaultStatus() int {
	switch k {
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindResourceUnavailable:
		return http.StatusServiceUnavailable
	case KindProcessingFailed:
		return http.StatusInternalServerError
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

// DefaultMessage returns the message used when none is supplied.
// KindGeneric has no default.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindInvalidCredential:
		return "Invalid or missing API key"
	case KindResourceUnavailable:
		return "ML model not available"
	case KindProcessingFailed:
		return "Prediction failed"
	case KindRateLimited:
		return "Rate limit exceeded. Try again later."
	default:
		return ""
	}
}

// Error is an application-defined failure carrying the HTTP status and a
// message that is safe to show to clients.
type Error struct {
	// Kind is the error variant.
	Kind Kind

	// Message is the client-visible description.
	Message string

	// StatusCode is the HTTP status sent to the client.
	StatusCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is a domain error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithStatus returns a copy of e with an explicit status code.
func (e *Error) WithStatus(code int) *Error {
	cp := *e
	cp.StatusCode = code
	return &cp
}

// New creates a domain error of the given kind. An empty message falls back to
// the kind's default.
func New(kind Kind, message string) *Error {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: kind.DefaultStatus(),
	}
}

// Generic creates a base domain error (400 unless overridden).
func Generic(message string) *Error {
	return New(KindGeneric, message)
}

// InvalidCredential creates a 401 error. An optional message replaces the default.
func InvalidCredential(message ...string) *Error {
	return New(KindInvalidCredential, first(message))
}

// ResourceUnavailable creates a 503 error.
func ResourceUnavailable(message ...string) *Error {
	return New(KindResourceUnavailable, first(message))
}

// ProcessingFailed creates a 500 error whose message is still client-safe.
func ProcessingFailed(message ...string) *Error {
	return New(KindProcessingFailed, first(message))
}

// RateLimited creates a 429 error.
func RateLimited(message ...string) *Error {
	return New(KindRateLimited, first(message))
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// ValidationError describes one field that failed request validation.
type ValidationError struct {
	// FieldPath is the location of the field, outermost first (e.g. body, case_text).
	FieldPath []string

	// Message is a human-readable description.
	Message string

	// Type is the validator tag that failed (e.g. "min", "oneof").
	Type string
}

// Field renders the path for clients.
func (v ValidationError) Field() string {
	return strings.Join(v.FieldPath, " -> ")
}

// ValidationErrors aggregates every violation found in one request.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	parts := make([]string, 0, len(ve))
	for _, v := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field(), v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Category is the dispatch bucket an error falls into.
type Category int

const (
	// CategoryUnexpected covers anything not anticipated by the application.
	CategoryUnexpected Category = iota

	// CategoryDomain covers *Error values.
	CategoryDomain

	// CategoryValidation covers ValidationErrors values.
	CategoryValidation
)

// Classify places err into a dispatch category, looking through wrapping.
func Classify(err error) Category {
	var de *Error
	if errors.As(err, &de) {
		return CategoryDomain
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return CategoryValidation
	}
	return CategoryUnexpected
}

// OpError wraps an error with the operation that failed.
type OpError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// WrapError creates a new OpError with context.
func WrapError(op string, err error) *OpError {
	return &OpError{
		Op:  op,
		Err: err,
	}
}
