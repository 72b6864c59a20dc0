// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Both cmd/api and cmd/seed load the same [Config]; fields a binary does not need are
simply ignored by it.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for Folio.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Event bus (Redis pub/sub). Empty disables publishing.
	RedisURL     string `env:"REDIS_URL"`
	EventChannel string `env:"EVENT_CHANNEL" envDefault:"folio:usergroup:events"`

	// Public key used to verify admin bearer tokens. Empty rejects all mutations.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH"`

	// Localization
	LocalePath    string `env:"LOCALE_PATH"    envDefault:"./data/locale"`
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en_US"`

	// ApplicationStages lists the workflow stage ids this deployment supports.
	ApplicationStages []int `env:"APPLICATION_STAGES" envDefault:"1,2,3,4,5" envSeparator:","`

	// DeduplicateAssignments skips inserting a (user, group) pair that already exists.
	DeduplicateAssignments bool `env:"DEDUPLICATE_ASSIGNMENTS" envDefault:"false"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"folio.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix returns the domain suffix trusted by the CORS middleware.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
