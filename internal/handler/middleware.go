package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// timingWriter stamps X-Process-Time right before the header block is
// flushed, so the value is present on every response.
type timingWriter struct {
	gin.ResponseWriter
	start time.Time
}

func (w *timingWriter) stamp() {
	if w.Written() {
		return
	}
	w.Header().Set(HeaderProcessTime, formatSeconds(time.Since(w.start)))
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// LoggingMiddleware logs request entry and completion, records
// unanticipated failures, and attaches X-Process-Time.
//
// Successful responses (status < 400) log at INFO, client errors at WARNING
// and server errors at ERROR.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := newRequestContext(c)
		c.Set(ctxKeyRequestContext, rc)
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: rc.Start}

		reqLogger := logger.With(zap.String("request_id", rc.ID))
		reqLogger.Debug(fmt.Sprintf("→ %s %s | Client: %s", rc.Method, rc.Path, rc.ClientAddr))

		completed := false
		defer func() {
			if completed {
				return
			}
			// A panic escaped every handler below us. Record it and let it
			// continue upward unchanged.
			rec := recover()
			if rec == nil {
				return
			}
			reqLogger.Error(fmt.Sprintf("Request failed: %s %s | Error: %v", rc.Method, rc.Path, rec))
			panic(rec)
		}()

		c.Next()
		completed = true

		elapsed := time.Since(rc.Start)
		if !c.Writer.Written() {
			c.Header(HeaderProcessTime, formatSeconds(elapsed))
		}

		if err := unexpectedError(c); err != nil {
			reqLogger.Error(fmt.Sprintf("Request failed: %s %s | Error: %s", rc.Method, rc.Path, err.Error()))
		}

		status := c.Writer.Status()
		symbol, level := statusOutcome(status)
		msg := fmt.Sprintf("%s %s %s | Status: %d | Time: %.3fs",
			symbol, rc.Method, rc.Path, status, elapsed.Seconds())
		if ce := reqLogger.Check(level, msg); ce != nil {
			ce.Write()
		}
	}
}

// statusOutcome maps a status code to the exit-line marker and level.
func statusOutcome(status int) (string, zapcore.Level) {
	switch {
	case status >= 500:
		return "XX", zapcore.ErrorLevel
	case status >= 400:
		return "!!", zapcore.WarnLevel
	default:
		return "OK", zapcore.InfoLevel
	}
}

// unexpectedError returns the last error attached to c that the application
// did not anticipate, or nil.
func unexpectedError(c *gin.Context) error {
	for i := len(c.Errors) - 1; i >= 0; i-- {
		if err := c.Errors[i].Err; domain.Classify(err) == domain.CategoryUnexpected {
			return err
		}
	}
	return nil
}
