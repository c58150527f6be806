package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RoundRateLimit limits moves per player (not per IP) using Redis.
// Requires JWT middleware to run before this.
func RoundRateLimit(maxRounds int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		playerID := c.GetString("player_id")
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "round_rl:" + playerID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-RoundRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RoundRateLimit-Limit", strconv.Itoa(maxRounds))
		c.Header("X-RoundRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRounds)-val), 10))

		if val > int64(maxRounds) {
			RLBlocked.WithLabelValues(limiterRound, c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "round rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(limiterRound, c.FullPath()).Inc()
		c.Next()
	}
}
