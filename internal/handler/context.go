// Package handler contains HTTP handlers and middleware for the API.
package handler

import (
	"time"

	"github.com/baro-ai/legal-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the correlation id in both directions.
	HeaderRequestID = "X-Request-ID"

	// HeaderProcessTime reports server-side elapsed seconds.
	HeaderProcessTime = "X-Process-Time"

	// HeaderAPIKey carries the client credential.
	HeaderAPIKey = "X-API-Key"

	ctxKeyRequestID      = "request_id"
	ctxKeyRequestContext = "request_context"
)

// RequestContext is the per-request bookkeeping created when a request
// enters the logging middleware.
type RequestContext struct {
	ID         string
	Method     string
	Path       string
	ClientAddr string
	Start      time.Time
}

// RequestIDMiddleware ensures each request has a unique ID and propagates it
// to the response header and the request context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Set(ctxKeyRequestID, requestID)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// requestID returns the id set by RequestIDMiddleware, or "".
func requestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// newRequestContext snapshots the request at entry.
func newRequestContext(c *gin.Context) *RequestContext {
	client := c.ClientIP()
	if client == "" {
		client = "unknown"
	}
	return &RequestContext{
		ID:         requestID(c),
		Method:     c.Request.Method,
		Path:       c.Request.URL.Path,
		ClientAddr: client,
		Start:      time.Now(),
	}
}

// requestContext returns the RequestContext stored by LoggingMiddleware.
func requestContext(c *gin.Context) (*RequestContext, bool) {
	v, ok := c.Get(ctxKeyRequestContext)
	if !ok {
		return nil, false
	}
	rc, ok := v.(*RequestContext)
	return rc, ok
}
