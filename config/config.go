package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication, bypass, and role-mapping configuration
//   - api.go: Backend API client configuration
//   - redis.go: Session snapshot store configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, relaxed checks).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Backend API client configuration
	API APIConfig `envPrefix:"API_"`

	// Redis session store configuration
	Redis RedisConfig `envPrefix:"REDIS_"`
}
