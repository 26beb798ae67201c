package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds everything the merchant backend needs at startup.
type ServerConfig struct {
	Port              string
	MongoURI          string
	MongoDatabase     string
	LipanaSecretKey   string
	LipanaEnvironment string
}

// ClientConfig holds the payctl defaults. Flags override these.
type ClientConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

// LoadServer reads .env (if present) and the process environment.
func LoadServer() (*ServerConfig, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &ServerConfig{
		Port:              getEnv("PORT", "5000"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "lipanadb"),
		LipanaSecretKey:   os.Getenv("LIPANA_SECRET_KEY"),
		LipanaEnvironment: getEnv("LIPANA_ENVIRONMENT", "production"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}
	if cfg.LipanaSecretKey == "" {
		return nil, fmt.Errorf("LIPANA_SECRET_KEY environment variable not set")
	}

	return cfg, nil
}

// LoadClient reads payctl defaults from the environment.
func LoadClient() (*ClientConfig, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &ClientConfig{
		BaseURL:      getEnv("API_BASE_URL", "http://localhost:5000"),
		PollInterval: 2 * time.Second,
		MaxAttempts:  150,
	}

	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
		}
		cfg.PollInterval = interval
	}

	if raw := os.Getenv("POLL_MAX_ATTEMPTS"); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_MAX_ATTEMPTS: %w", err)
		}
		cfg.MaxAttempts = attempts
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
