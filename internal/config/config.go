// Package config loads synex settings from the environment, after reading
// an optional .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the full runtime configuration.
type Config struct {
	APIURL       string `env:"SYNEX_API_URL" envDefault:"https://api.synex.app"`
	DashboardURL string `env:"SYNEX_DASHBOARD_URL" envDefault:"https://synex.app/dashboard"`

	TokenStore  string `env:"SYNEX_TOKEN_STORE" envDefault:"file"`
	TokenFile   string `env:"SYNEX_TOKEN_FILE"`
	RedisURL    string `env:"SYNEX_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix string `env:"SYNEX_REDIS_PREFIX" envDefault:"synex"`

	// RequestTimeout bounds each API call; zero leaves it to the server.
	RequestTimeout time.Duration `env:"SYNEX_REQUEST_TIMEOUT" envDefault:"0s"`

	LogLevel string `env:"SYNEX_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"SYNEX_LOG_FILE"`

	// DemoLogin checks credentials against the built-in allow-list instead
	// of the API.
	DemoLogin bool `env:"SYNEX_DEMO_LOGIN" envDefault:"false"`

	ReleaseRepo string `env:"SYNEX_RELEASE_REPO" envDefault:"naveenspark/synex"`
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config.Parse: %w", err)
	}
	if err := cfg.fillDefaults(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that env tags cannot express.
func (c Config) Validate() error {
	switch c.TokenStore {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: SYNEX_TOKEN_STORE must be file, redis or memory, got %q", c.TokenStore)
	}
	if c.APIURL == "" {
		return errors.New("config: SYNEX_API_URL is empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config: SYNEX_REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// Dir returns ~/.synex, where the token file and log live by default.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".synex"), nil
}

func (c *Config) fillDefaults() error {
	if c.TokenFile != "" && c.LogFile != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TokenFile == "" {
		c.TokenFile = filepath.Join(dir, "tokens.json")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "synex.log")
	}
	return nil
}
