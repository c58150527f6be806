package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (h *Handler) Me(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	p, err := h.Players.Get(c.Request.Context(), playerID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          p.ID,
		"profile":     p.Profile,
		"registered":  p.Registered(),
		"theme":       p.Theme,
		"stats":       p.Stats,
		"win_rate":    round1(p.Stats.WinRate()),
		"ai_win_rate": round1(p.Stats.OpponentWinRate()),
	})
}

// UpdateProfile sets name and avatar after a name change.
func (h *Handler) UpdateProfile(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	p, err := h.Players.UpdateProfile(c.Request.Context(), playerID, req.Name, req.Avatar)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": p})
}

// ClearProfile is "change name": the profile is forgotten and running
// sessions end, taking the opponent's move history with them.
func (h *Handler) ClearProfile(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	if err := h.Players.ClearProfile(c.Request.Context(), playerID); err != nil {
		fail(c, err)
		return
	}
	ended := h.Sessions.EndPlayer(playerID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "sessions_ended": ended})
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

func (h *Handler) SetTheme(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req ThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	theme, err := h.Players.SetTheme(c.Request.Context(), playerID, req.Theme)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}
