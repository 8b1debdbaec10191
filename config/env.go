package config

import "os"

// Environment selects which configuration loader applies at startup.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads the runtime environment. A CI=true variable wins
// over ENV; anything unrecognized falls back to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction reports whether the process runs with production settings.
func IsProduction() bool {
	return GetEnvironment() == Production
}
