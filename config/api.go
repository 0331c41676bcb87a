package config

import "time"

// APIConfig contains backend API client configuration.
type APIConfig struct {
	// BaseURL is the backend origin requests resolve against. Absolute
	// request URLs pass through unchanged.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Timeout bounds a single request attempt, not the retry cycle.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}
