package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	SolverURL           string
	SolverAPIKey        string
	DatabaseURL         string
	CacheEnabled        bool
	WorkerCount         int
	MaxConcurrentSolves int
	RequestTimeout      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	databaseURL := getEnv("DATABASE_URL", "")

	return &Config{
		SolverURL:           getEnv("SOLVER_URL", "http://localhost:8080"),
		SolverAPIKey:        getEnv("SOLVER_API_KEY", ""),
		DatabaseURL:         databaseURL,
		CacheEnabled:        databaseURL != "" && getEnvBool("CACHE_ENABLED", true),
		WorkerCount:         getEnvInt("WORKER_COUNT", 8),
		MaxConcurrentSolves: getEnvInt("MAX_CONCURRENT_SOLVES", 4),
		RequestTimeout:      time.Duration(getEnvInt("SOLVER_TIMEOUT_SECONDS", 300)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
