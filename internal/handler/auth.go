package handler

import (
	"crypto/subtle"

	"github.com/baro-ai/legal-api/internal/domain"
	"github.com/baro-ai/legal-api/pkg/sanitizer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIKeyAuth rejects requests whose X-API-Key header is missing or not in
// keys with InvalidCredential (401).
func APIKeyAuth(keys []string, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("auth")
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		allowed = append(allowed, []byte(k))
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" {
			logger.Warn("missing API key",
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Request.URL.Path),
			)
			abortWith(c, domain.InvalidCredential())
			return
		}

		if !keyAllowed(allowed, []byte(key)) {
			logger.Warn("rejected API key",
				zap.String("request_id", requestID(c)),
				zap.String("api_key", sanitizer.MaskKey(key)),
				zap.String("path", c.Request.URL.Path),
			)
			abortWith(c, domain.InvalidCredential())
			return
		}

		c.Next()
	}
}

func keyAllowed(allowed [][]byte, key []byte) bool {
	match := 0
	for _, k := range allowed {
		match |= subtle.ConstantTimeCompare(k, key)
	}
	return match == 1
}
