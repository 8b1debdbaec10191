package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Media storage: local root and URL prefix used when S3 is not configured
	MediaRoot string
	MediaURL  string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environments from environment variables only
func loadCIConfig(cfg *Config) {
	cfg.ServerPort = envOr("SERVER_PORT", "8080")
	cfg.ServerHost = envOr("SERVER_HOST", "localhost")
	cfg.DBHost = envOr("DB_HOST", "localhost")
	cfg.DBPort = envOr("DB_PORT", "5432")
	cfg.DBUser = envOr("DB_USER", "postgres")
	cfg.DBPassword = envOr("DB_PASSWORD", "postgres")
	cfg.DBName = envOr("DB_NAME", "pulsefeed")
	cfg.DBSSLMode = envOr("DB_SSL_MODE", "disable")
	cfg.RedisHost = envOr("REDIS_HOST", "localhost")
	cfg.RedisPort = envOr("REDIS_PORT", "6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0
	cfg.JWTSecret = envOr("JWT_SECRET", "test-secret")
	cfg.MediaRoot = envOr("MEDIA_ROOT", "media")
	cfg.MediaURL = envOr("MEDIA_URL", "/media/")
}

// loadDevConfig loads configuration for development and test environments.
// Docker secrets win when present, then environment variables, then defaults.
func loadDevConfig(cfg *Config) {
	cfg.ServerPort = secretOrEnv("server_port", "SERVER_PORT", "8080")
	cfg.ServerHost = secretOrEnv("server_host", "SERVER_HOST", "localhost")
	cfg.DBHost = secretOrEnv("db_host", "DB_HOST", "localhost")
	cfg.DBPort = secretOrEnv("db_port", "DB_PORT", "5432")
	cfg.DBUser = secretOrEnv("db_user", "DB_USER", "postgres")
	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD", "postgres")
	cfg.DBName = secretOrEnv("db_name", "DB_NAME", "pulsefeed")
	cfg.DBSSLMode = secretOrEnv("db_ssl_mode", "DB_SSL_MODE", "disable")
	cfg.RedisHost = secretOrEnv("redis_host", "REDIS_HOST", "localhost")
	cfg.RedisPort = secretOrEnv("redis_port", "REDIS_PORT", "6379")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD", "")
	cfg.RedisURL = secretOrEnv("redis_url", "REDIS_URL", "redis://localhost:6379")
	cfg.RedisDB = 0
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET", "dev-secret")
	cfg.MediaRoot = envOr("MEDIA_ROOT", "media")
	cfg.MediaURL = envOr("MEDIA_URL", "/media/")
}

// loadProdConfig loads configuration for production using ONLY Docker secrets
func loadProdConfig(cfg *Config) {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.RedisURL = readSecret("redis_url")
	cfg.RedisDB = 0
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.MediaRoot = envOr("MEDIA_ROOT", "/var/lib/pulsefeed/media")
	cfg.MediaURL = envOr("MEDIA_URL", "/media/")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func secretOrEnv(secret, envVar, fallback string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return envOr(envVar, fallback)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
