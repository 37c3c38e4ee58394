package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Backend is the remote Rently REST API
	Backend struct {
		// Base URL of the backend API, including the /api prefix
		BaseURL string `env:"RENTLY_API_URL" envDefault:"http://localhost:8080/api"`

		// Request timeout in seconds
		RequestTimeout int `env:"RENTLY_API_TIMEOUT" envDefault:"10"`
	}

	// Search pipeline tuning
	Search struct {
		// Quiet period before a filter change triggers a fetch (in milliseconds)
		DebounceMillis int `env:"SEARCH_DEBOUNCE_MS" envDefault:"300"`
	}

	// Session persistence
	Session struct {
		// Path to the local credential database file
		StorePath string `env:"SESSION_STORE_PATH" envDefault:"session.db"`
	}

	// Local UI gateway
	Listen struct {
		Port string `env:"PORT" envDefault:"5250"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
