package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rps_ultimate/internal/config"
	"rps_ultimate/internal/db"
	httpServer "rps_ultimate/internal/http"
	"rps_ultimate/internal/http/handlers"
	"rps_ultimate/internal/http/middleware"
	"rps_ultimate/internal/logger"
	"rps_ultimate/internal/repository"
	"rps_ultimate/internal/round"
	"rps_ultimate/internal/service"
	"rps_ultimate/internal/session"
	"rps_ultimate/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init("rps-api", cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbPool := db.Connect(cfg.DatabaseURL)
	if dbPool != nil {
		defer dbPool.Close()
	}
	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}
	middleware.InitRedisRateLimiter(rdb)

	var store session.Store = repository.NewMemoryPlayerRepository()
	if rdb != nil {
		store = repository.NewRedisPlayerRepository(rdb)
	}

	var (
		rounds   *repository.RoundRepository
		recorder round.Recorder
	)
	if dbPool != nil {
		rounds = repository.NewRoundRepository(dbPool)
		recorder = rounds
	}

	// the countdown is animated by API clients
	sessions := service.NewSessionService(store, recorder, round.Config{RevealDelay: cfg.RevealDelay})
	sessions.StartCleanup(ctx)

	hub := ws.NewHub()
	hub.StartCleanup(ctx)

	h := handlers.NewHandler(service.NewPlayerService(store), sessions, rounds)
	health := handlers.NewHealthHandler(dbPool, rdb, version)
	health.Count("rooms_open", hub.RoomCount)
	health.Count("ai_sessions", sessions.Count)

	r := gin.Default()

	// CORS for browser clients on a different origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, cfg, h, health, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
