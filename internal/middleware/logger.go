package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/response"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := requestFields(c, start)
		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			if len(c.Errors) > 0 {
				fields["error"] = c.Errors.String()
			}
			logger.Error("request", fields)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields)
		default:
			logger.Info("request", fields)
		}
	}
}

// ErrorLogger recovers from panics and answers with a 500 envelope.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				fields := requestFields(c, start)
				fields["error"] = fmt.Sprintf("%v", recovered)
				fields["stack"] = string(debug.Stack())
				logger.Error("panic", fields)

				response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) logger.Fields {
	return logger.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetInt64("user_id"),
		"request_id": requestID(c),
		"latency_ms": time.Since(start).Milliseconds(),
	}
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
