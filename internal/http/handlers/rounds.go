package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// MyRounds returns archived rounds and the last month's aggregate.
func (h *Handler) MyRounds(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}
	if h.Rounds == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "round archive disabled"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	ctx := c.Request.Context()
	rounds, err := h.Rounds.GetByPlayer(ctx, playerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rounds"})
		return
	}

	since := time.Now().AddDate(0, -1, 0)
	stats, _ := h.Rounds.GetPlayerStats(ctx, playerID, since)

	c.JSON(http.StatusOK, gin.H{"rounds": rounds, "stats": stats})
}
