package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// InitConfig loads a .env file if present (missing file is not fatal, a
// malformed one is not fatal either — only an env.Parse failure is, such as
// a missing required env var or a value that does not parse) and parses
// AppConfig from the process environment.
func InitConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Connection: DefaultConnectionConfig(),
		Pool:       DefaultPoolConfig(),
	}

	if err := godotenv.Load(); err != nil {
		log.Print("unable to load .env file, continuing with process environment")
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
