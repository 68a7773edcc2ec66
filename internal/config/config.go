package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Client is the configuration of the CLI / SDK side.
type Client struct {
	APIBaseURL string
	StateFile  string
}

// Server is the configuration of the local dev backend.
type Server struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
}

// LoadClient reads client settings from the environment, after loading a
// .env file if one is present.
func LoadClient() (*Client, error) {
	_ = godotenv.Load()

	cfg := &Client{
		APIBaseURL: getEnv("SERVIO_API_URL", "http://localhost:8080"),
		StateFile:  getEnv("SERVIO_STATE_FILE", defaultStateFile()),
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("SERVIO_API_URL must not be empty")
	}
	return cfg, nil
}

// LoadServer reads dev server settings from the environment.
func LoadServer() (*Server, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Server{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", "servio-dev.db"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-only-secret"),
		TokenTTL:    ttl,
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	return cfg, nil
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "servio-state.db"
	}
	return filepath.Join(home, ".servio", "state.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
