package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the gin context key under which RequestID stores
// the id for the current request.
const ContextKeyRequestID = "request_id"

// RequestID assigns each request an id, honoring a caller-supplied
// X-Request-ID so ids stay stable across the gateway hop, and echoes it on
// the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger logs one line per request: method, path with query, status, body
// size, latency, and the request id. Health probes are not logged; they
// fire often enough to drown everything else.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/readyz" {
			c.Next()
			return
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		start := time.Now()
		c.Next()

		log.Printf("http: %s %s status=%d bytes=%d latency=%s request_id=%s",
			c.Request.Method,
			path,
			c.Writer.Status(),
			c.Writer.Size(),
			time.Since(start).Round(time.Millisecond),
			c.GetString(ContextKeyRequestID),
		)
	}
}

// Recovery logs the panic with the request id, then responds 500 through
// the standard error envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("http: panic recovered: %v request_id=%s", recovered, c.GetString(ContextKeyRequestID))
		c.AbortWithStatusJSON(500, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "an internal error occurred"},
		})
	})
}
