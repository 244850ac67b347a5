package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
)

// WithLogr returns a gin middleware that logs one line per request with its status, method, path
// and latency: at info level, or at error level with the last error when gin accumulated any
// during the handler chain.
func WithLogr(log logr.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithValues(
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"latency", time.Since(start).String(),
		)
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.Last(), "request completed with error")
			return
		}
		entry.Info("request completed")
	}
}
