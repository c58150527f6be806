package config

import (
	"os"
	"strconv"
	"time"

	"rps_ultimate/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// Round pacing
	CountdownStep time.Duration
	RevealDelay   time.Duration
	LeaveDelay    time.Duration

	// Rate limits
	APIRateLimit    int
	APIRateWindow   int
	RoundRateLimit  int
	RoundRateWindow int

	// Terminal client
	RelayURL   string
	PlayerFile string
}

// Load reads the server config. JWT_SECRET is required.
func Load() *Config {
	cfg := LoadClient()
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}
	return cfg
}

// LoadClient reads the config without requiring server secrets.
func LoadClient() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	relayURL := os.Getenv("RELAY_URL")
	if relayURL == "" {
		relayURL = "ws://localhost:" + port + "/ws/rooms"
	}

	playerFile := os.Getenv("PLAYER_FILE")
	if playerFile == "" {
		playerFile = "rps_player.json"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		CountdownStep: envMillis("COUNTDOWN_STEP_MS", 700),
		RevealDelay:   envMillis("REVEAL_DELAY_MS", 2000),
		LeaveDelay:    envMillis("LEAVE_DELAY_MS", 3000),

		APIRateLimit:    envInt("API_RATE_LIMIT", 120),
		APIRateWindow:   envInt("API_RATE_WINDOW_SECONDS", 60),
		RoundRateLimit:  envInt("ROUND_RATE_LIMIT", 60),
		RoundRateWindow: envInt("ROUND_RATE_WINDOW_SECONDS", 60),

		RelayURL:   relayURL,
		PlayerFile: playerFile,
	}
}

// envInt returns def unless key holds a non-negative integer.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envInt(key, def)) * time.Millisecond
}
