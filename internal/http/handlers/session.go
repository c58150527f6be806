package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SeriesRequest struct {
	SeriesLength int `json:"series_length"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	var req SeriesRequest
	// empty body means unlimited
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}

	id, snap, err := h.Sessions.Create(c.Request.Context(), playerID, req.SeriesLength)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "session": snap})
}

func (h *Handler) GetSession(c *gin.Context) {
	playerID, _ := getPlayerID(c)
	snap, err := h.Sessions.Snapshot(playerID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// Move plays a round. 409 means the previous round is still being
// revealed or the series is over.
func (h *Handler) Move(c *gin.Context) {
	playerID, _ := getPlayerID(c)

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	snap, err := h.Sessions.Move(playerID, c.Param("id"), req.Move)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

func (h *Handler) ResetMatch(c *gin.Context) {
	playerID, _ := getPlayerID(c)
	snap, err := h.Sessions.ResetMatch(playerID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

func (h *Handler) NewSeries(c *gin.Context) {
	playerID, _ := getPlayerID(c)

	var req SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	snap, err := h.Sessions.NewSeries(playerID, c.Param("id"), req.SeriesLength)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

func (h *Handler) EndSession(c *gin.Context) {
	playerID, _ := getPlayerID(c)
	if err := h.Sessions.End(playerID, c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
