package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Upload handling; storage mode lives in the storage package config
	DataDir string

	// Admin authentication
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	// Ingestion behavior
	Timezone       string
	QueueMatchMode string
	QueueTarget    string

	// Heuristic tunables
	SnifferSampleRows  int
	DayFirstSampleSize int
	DayFirstRatio      float64
	MinParsedFloor     int
	MinParsedFraction  float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		Timezone:       getEnv("TIMEZONE", "America/Sao_Paulo"),
		QueueMatchMode: getEnv("QUEUE_MATCH_MODE", "smart"),
		QueueTarget:    getEnv("QUEUE_TARGET", "Estrela Televendas"),
	}

	tokenTTL, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "480"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}
	config.TokenTTL = time.Duration(tokenTTL) * time.Minute

	config.SnifferSampleRows, err = getEnvInt("SNIFFER_SAMPLE_ROWS", 200)
	if err != nil {
		return nil, err
	}
	config.DayFirstSampleSize, err = getEnvInt("DAYFIRST_SAMPLE_SIZE", 300)
	if err != nil {
		return nil, err
	}
	config.MinParsedFloor, err = getEnvInt("MIN_PARSED_FLOOR", 5)
	if err != nil {
		return nil, err
	}

	config.DayFirstRatio, err = getEnvFloat("DAYFIRST_RATIO", 0.6)
	if err != nil {
		return nil, err
	}
	config.MinParsedFraction, err = getEnvFloat("MIN_PARSED_FRACTION", 0.2)
	if err != nil {
		return nil, err
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
