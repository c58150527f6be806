package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// Auth registers a new player and returns its token.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	player, token, err := h.Players.Register(c.Request.Context(), req.Name, req.Avatar)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"player": player,
	})
}
