package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is usable in the
// current environment. Production requires every sensitive value to
// have come from a Docker secret; other environments have defaults.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.JWTSecret == "" {
		errs = append(errs, "jwt_secret is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" {
		errs = append(errs, "database host and port are required")
	}
	if cfg.DBName == "" {
		errs = append(errs, "database name is required")
	}
	if cfg.ServerPort == "" {
		errs = append(errs, "server port is required")
	}

	if IsProduction() {
		if cfg.DBPassword == "" {
			errs = append(errs, "db_password secret is required in production")
		}
		if cfg.JWTSecret == "dev-secret" || cfg.JWTSecret == "test-secret" {
			errs = append(errs, "jwt_secret must not use a development default in production")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
