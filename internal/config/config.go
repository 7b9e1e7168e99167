// Package config reads the service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs to wire itself up. DatabaseURL
// selects the postgres backend when set; otherwise the SQLite file is used.
// RedisAddr enables the mutation journal when set.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"anotador.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
