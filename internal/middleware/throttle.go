package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/ratelimit"
	"promptstudio/internal/pkg/response"
)

// Throttle enforces limiter for each caller. Authenticated callers are keyed
// by user id, everyone else by client IP. Counting and checking happen in one
// Hit, so a concurrent burst cannot slip past the limit.
func Throttle(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Hit(c.Request.Context(), throttleKey(c))
		if err != nil {
			logger.Error("rate limiter unavailable", logger.Fields{"error": err.Error()})
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Reached {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			response.Abort(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests")
			return
		}

		c.Next()
	}
}

func throttleKey(c *gin.Context) string {
	if userID := c.GetInt64("user_id"); userID > 0 {
		return "api:user:" + strconv.FormatInt(userID, 10)
	}
	return "api:ip:" + c.ClientIP()
}
