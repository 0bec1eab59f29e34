package handler

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// internalErrorMessage is the only text clients see for unanticipated failures.
const internalErrorMessage = "Internal server error. Please contact support."

// stackError carries the goroutine stack captured where a failure surfaced.
type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string { return e.err.Error() }

func (e *stackError) Unwrap() error { return e.err }

// abortWith attaches err to the request and stops the handler chain. The
// error is rendered by ErrorHandler. err must not be nil.
func abortWith(c *gin.Context, err error) {
	if domain.Classify(err) == domain.CategoryUnexpected {
		var se *stackError
		if !errors.As(err, &se) {
			err = &stackError{err: err, stack: debug.Stack()}
		}
	}
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler is the dispatch boundary. Every failure raised below it,
// whether attached with c.Error or thrown as a panic, is rendered as an
// ErrorResponse:
//
//   - *domain.Error: its status and message
//   - domain.ValidationErrors: 422 with one detail per violation
//   - anything else: 500 with a fixed message; the cause is only logged
//
// m may be nil.
func ErrorHandler(logger *zap.Logger, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			var err error
			if e, ok := rec.(error); ok {
				err = fmt.Errorf("panic: %w", e)
			} else {
				err = fmt.Errorf("panic: %v", rec)
			}
			err = &stackError{err: err, stack: debug.Stack()}
			_ = c.Error(err)
			c.Abort()
			dispatch(c, logger, m, err)
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			dispatch(c, logger, m, last.Err)
		}
	}
}

func dispatch(c *gin.Context, logger *zap.Logger, m *Metrics, err error) {
	path := c.Request.URL.Path
	logger = logger.With(zap.String("request_id", requestID(c)))

	var (
		status int
		body   domain.ErrorResponse
	)

	category := domain.Classify(err)
	switch category {
	case domain.CategoryDomain:
		var de *domain.Error
		errors.As(err, &de)
		logger.Warn(fmt.Sprintf("BaroException: %s | Path: %s", de.Message, path))
		m.observeError(de.Kind.String())
		status = de.StatusCode
		body = domain.ErrorResponse{Error: true, Message: de.Message, Path: path}

	case domain.CategoryValidation:
		var ve domain.ValidationErrors
		errors.As(err, &ve)
		logger.Warn(fmt.Sprintf("Validation Error: %s | Path: %s", formatViolations(ve), path))
		m.observeError("Validation")
		status = http.StatusUnprocessableEntity
		body = domain.ErrorResponse{
			Error:   true,
			Message: "Validation failed",
			Details: toDetails(ve),
			Path:    path,
		}

	default:
		var stack []byte
		var se *stackError
		if errors.As(err, &se) {
			stack = se.stack
		} else {
			stack = debug.Stack()
		}
		logger.Error("Unhandled Exception: " + err.Error())
		logger.Error("Traceback: " + strings.TrimRight(string(stack), "\n"))
		m.observeError("Unexpected")
		status = http.StatusInternalServerError
		body = domain.ErrorResponse{Error: true, Message: internalErrorMessage, Path: path}
	}

	if c.Writer.Written() {
		return
	}
	c.JSON(status, body)
}

func toDetails(ve domain.ValidationErrors) []domain.ErrorDetail {
	details := make([]domain.ErrorDetail, 0, len(ve))
	for _, v := range ve {
		details = append(details, domain.ErrorDetail{
			Field:   v.Field(),
			Message: v.Message,
			Type:    v.Type,
		})
	}
	return details
}

func formatViolations(ve domain.ValidationErrors) string {
	parts := make([]string, 0, len(ve))
	for _, v := range ve {
		parts = append(parts, fmt.Sprintf("{field: %s, message: %s, type: %s}", v.Field(), v.Message, v.Type))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	abortWith(c, domain.Generic("Not Found").WithStatus(http.StatusNotFound))
}

// MethodNotAllowed answers routes matched with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	abortWith(c, domain.Generic("Method Not Allowed").WithStatus(http.StatusMethodNotAllowed))
}
