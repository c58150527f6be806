package handlers

import (
	"errors"
	"net/http"

	"rps_ultimate/internal/domain"
	"rps_ultimate/internal/repository"
	"rps_ultimate/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Players  *service.PlayerService
	Sessions *service.SessionService
	// nil when DATABASE_URL is not set
	Rounds *repository.RoundRepository
}

func NewHandler(players *service.PlayerService, sessions *service.SessionService, rounds *repository.RoundRepository) *Handler {
	return &Handler{
		Players:  players,
		Sessions: sessions,
		Rounds:   rounds,
	}
}

// getPlayerID извлекает player_id из контекста Gin
func getPlayerID(c *gin.Context) (string, bool) {
	id := c.GetString("player_id")
	return id, id != ""
}

// fail maps service and domain errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrInvalidSeriesLength),
		errors.Is(err, domain.ErrNameTooShort),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrAvatarRequired):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrMoveRejected):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
