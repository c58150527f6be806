package middleware

import (
	"net/http"
	"strings"

	"rps_ultimate/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT requires "Authorization: Bearer <token>" and stores player_id in
// the gin context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		playerID, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("player_id", playerID)
		c.Next()
	}
}
