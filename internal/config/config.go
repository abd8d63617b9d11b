// Package config resolves the client's configuration from the environment.
// A local .env file is honored when present so dev setups need no exported
// variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/codex-web/auth-front/internal/log"
)

// StorageKind selects the session store backend.
type StorageKind string

const (
	StorageMemory    StorageKind = "memory"
	StorageRedis     StorageKind = "redis"
	StorageFirestore StorageKind = "firestore"
)

// Config is the full runtime configuration.
type Config struct {
	// APIBaseURL is where the Codex backend lives. The default matches the
	// backend's dev compose setup.
	APIBaseURL string `env:"CODEX_API_URL" envDefault:"http://localhost/api"`

	// HTTPTimeout bounds each backend call. Zero means no timeout; a hung
	// request then keeps its flow loading until the process dies.
	HTTPTimeout time.Duration `env:"CODEX_HTTP_TIMEOUT"`

	// Storage picks where session state survives between page loads.
	Storage StorageKind `env:"CODEX_SESSION_STORAGE" envDefault:"memory"`

	RedisAddr      string `env:"CODEX_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  Secret `env:"CODEX_REDIS_PASSWORD"`
	RedisNamespace string `env:"CODEX_REDIS_NAMESPACE" envDefault:"authfront"`

	FirestoreProject     string `env:"CODEX_FIRESTORE_PROJECT"`
	FirestoreCredentials string `env:"CODEX_FIRESTORE_CREDENTIALS"`
	FirestoreCollection  string `env:"CODEX_FIRESTORE_COLLECTION" envDefault:"client_sessions"`
}

// Load reads .env (when present) and the process environment, then validates.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.LogDebug("Loaded configuration from .env")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CODEX_API_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	switch cfg.Storage {
	case StorageMemory:
		log.LogWarn("Session storage is in-memory: sessions will not survive a restart")
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("CODEX_REDIS_ADDR is required for redis storage")
		}
	case StorageFirestore:
		if cfg.FirestoreProject == "" {
			return fmt.Errorf("CODEX_FIRESTORE_PROJECT is required for firestore storage")
		}
	default:
		return fmt.Errorf("unsupported session storage kind: %q", cfg.Storage)
	}

	if cfg.HTTPTimeout < 0 {
		return fmt.Errorf("CODEX_HTTP_TIMEOUT must not be negative")
	}
	return nil
}
