// Package config reads the service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port              uint16        `envconfig:"SERVER_PORT" default:"8080"`
	StoreDriver       string        `envconfig:"STORE_DRIVER" default:"memory"`
	MongoURL          string        `envconfig:"MONGO_URL"`
	MongoDBName       string        `envconfig:"MONGO_DBNAME" default:"learnit"`
	PostgresURL       string        `envconfig:"POSTGRES_URL"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads envFile when it exists and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required for the mongo store")
		}
	case DriverPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}
