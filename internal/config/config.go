package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	StoreBackend    string
	DBPath          string
	DatabaseURL     string
	RedisAddr       string
	AMQPURL         string
	AMQPExchange    string
	GPSTickInterval time.Duration
	SeedPath        string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return Config{
		Port:            Get("PORT", "8080"),
		StoreBackend:    strings.ToLower(Get("STORE_BACKEND", "memory")),
		DBPath:          Get("DB_PATH", "data/app.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       Get("REDIS_ADDR", "localhost:6379"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPExchange:    Get("AMQP_EXCHANGE", "fuel.events"),
		GPSTickInterval: Duration("GPS_TICK_INTERVAL", 5*time.Second),
		SeedPath:        Get("SEED_PATH", "data/seeds/fleet.json"),
	}
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// Duration parses values like "5s" or "500ms". Bad values fall back with a warning.
func Duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
