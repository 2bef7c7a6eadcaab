package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Cart storage backends.
const (
	StorageFile   = "file"
	StorageDB     = "db"
	StorageMemory = "memory"
)

type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	CartStorage  string
	CartFile     string
	CartKey      string
	KafkaBrokers string
	KafkaTopic   string
	LogLevel     zapcore.Level
}

// Load reads .env (outside production) and then the environment.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	if env != "production" {
		// A missing .env is fine; variables may come from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:          env,
		Port:         strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		CartStorage:  strings.ToLower(getEnv("CART_STORAGE", StorageFile)),
		CartFile:     getEnv("CART_FILE", "cart.json"),
		CartKey:      getEnv("CART_KEY", "cart"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "cart.events"),
	}

	level, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.CartStorage {
	case StorageFile, StorageDB, StorageMemory:
	default:
		return fmt.Errorf("CART_STORAGE must be one of %s, %s, %s; got %q",
			StorageFile, StorageDB, StorageMemory, c.CartStorage)
	}
	if c.CartKey == "" {
		return fmt.Errorf("CART_KEY cannot be empty")
	}
	return nil
}

// NewLogger builds the process logger: JSON in production, console
// otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if c.Env == "production" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
