package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config collects every environment knob the marketplace processes read.
// A missing .env file is fine; real deployments set the variables directly.
type Config struct {
	PostgresURL     string
	Port            string
	KafkaBrokers    []string
	JWTSecret       string
	EmailServiceURL string
	OTLPEndpoint    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		EmailServiceURL: getEnv("EMAIL_SERVICE_URL", ""),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
