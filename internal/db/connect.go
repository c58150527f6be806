package db

import (
	"context"
	"time"

	"rps_ultimate/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Connect opens the round archive pool. An empty dsn disables the archive.
func Connect(dsn string) *pgxpool.Pool {
	if dsn == "" {
		logger.Info("DATABASE_URL not set, round archive disabled")
		return nil
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Component("db").Info("database connected")
	return db
}

// ConnectRedis returns nil when addr is empty; callers fall back to the
// in-memory store and skip rate limiting.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		logger.Info("REDIS_ADDR not set, using in-memory profile store")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping redis", "addr", addr, "error", err)
	}

	logger.Component("db").Info("redis connected", "addr", addr)
	return rdb
}
