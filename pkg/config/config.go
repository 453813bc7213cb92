// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for all environment variables.
const EnvPrefix = "TILLBOOK"

// Config is the full service configuration.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	Sales SalesConfig
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env         string `envconfig:"TILLBOOK_APP_ENV" default:"development"`
	Port        string `envconfig:"TILLBOOK_APP_PORT" default:"8080"`
	LogLevel    string `envconfig:"TILLBOOK_LOG_LEVEL" default:"info"`
	AutoMigrate bool   `envconfig:"TILLBOOK_AUTO_MIGRATE" default:"false"`
}

// IsDev reports whether the service runs in development mode.
func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development")
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	DSN             string        `envconfig:"TILLBOOK_DATABASE_URL" required:"true"`
	MaxConns        int32         `envconfig:"TILLBOOK_DB_MAX_CONNS" default:"25"`
	MinConns        int32         `envconfig:"TILLBOOK_DB_MIN_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"TILLBOOK_DB_CONN_LIFETIME" default:"1h"`
}

// RedisConfig holds the optional report cache settings.
// Leave Addr empty to run without a cache.
type RedisConfig struct {
	Addr     string        `envconfig:"TILLBOOK_REDIS_ADDR"`
	Password string        `envconfig:"TILLBOOK_REDIS_PASSWORD"`
	DB       int           `envconfig:"TILLBOOK_REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"TILLBOOK_REPORT_CACHE_TTL" default:"30s"`
}

// Enabled reports whether a cache address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	JWTSecret     string        `envconfig:"TILLBOOK_JWT_SECRET" required:"true"`
	AccessKeyHash string        `envconfig:"TILLBOOK_ACCESS_KEY_HASH" required:"true"`
	TokenTTL      time.Duration `envconfig:"TILLBOOK_TOKEN_TTL" default:"12h"`
}

// SalesConfig holds sale acceptance policy settings.
type SalesConfig struct {
	// PolicyRules are CEL expressions evaluated before a sale is accepted.
	// Empty means built-in defaults only.
	PolicyRules []string `envconfig:"TILLBOOK_SALE_POLICY_RULES"`
}
