package http

import (
	"time"

	"rps_ultimate/internal/config"
	"rps_ultimate/internal/http/handlers"
	"rps_ultimate/internal/http/middleware"
	"rps_ultimate/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// relay upgrades per IP; in-process so it works without Redis
const (
	relayRateLimit  = 30
	relayRateWindow = time.Minute
)

func RegisterRoutes(r *gin.Engine, cfg *config.Config, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub) {
	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	roundRateWindow := time.Duration(cfg.RoundRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, middleware.RoundRateLimit(cfg.RoundRateLimit, roundRateWindow))

	// Relay for multiplayer rooms
	r.GET("/ws/rooms", middleware.SimpleRateLimit(relayRateLimit, relayRateWindow), ws.HandleWS(hub, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, roundRL gin.HandlerFunc) {
	// Auth
	api.POST("/auth", h.Auth)

	// Player profile
	me := api.Group("/me")
	me.Use(middleware.JWT())
	{
		me.GET("", h.Me)
		me.PUT("/profile", h.UpdateProfile)
		me.DELETE("/profile", h.ClearProfile)
		me.PUT("/theme", h.SetTheme)
		me.GET("/rounds", h.MyRounds)
	}

	// AI sessions
	sessions := api.Group("/sessions")
	sessions.Use(middleware.JWT())
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/moves", roundRL, h.Move)
		sessions.POST("/:id/reset", h.ResetMatch)
		sessions.POST("/:id/series", h.NewSeries)
		sessions.DELETE("/:id", h.EndSession)
	}
}
