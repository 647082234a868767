// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// StackExchange API
	StackAPIBaseURL string
	StackAPIKey     string
	DefaultSite     string
	SitesFile       string // optional catalog override (json or yaml)

	// Outbound HTTP (token exchange, chat send, search)
	ClientTimeout time.Duration

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:             env("SPACEBOT_ENV", "dev"),
		HTTPAddr:        env("SPACEBOT_HTTP_ADDR", ":8080"),
		StackAPIBaseURL: env("STACK_API_BASE_URL", "https://api.stackexchange.com/2.3"),
		StackAPIKey:     env("STACK_API_KEY", ""),
		DefaultSite:     env("STACK_DEFAULT_SITE", "stackoverflow"),
		SitesFile:       env("STACK_SITES_FILE", ""),
		ClientTimeout:   envDur("HTTP_CLIENT_TIMEOUT_SEC", 15) * time.Second,
		RedisURL:        env("REDIS_URL", ""),
		DatabaseURL:     env("DATABASE_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory registration store for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
