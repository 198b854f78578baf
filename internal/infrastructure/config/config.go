package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	// AdminEmails are granted the unrestricted rating capability when they sign in.
	AdminEmails []string `env:"ADMIN_EMAILS"`
	// RateLimitRPS bounds reaction submissions per user; 0 disables the limiter.
	RateLimitRPS float64 `env:"RATE_LIMIT_RPS, default=1"`

	Mongo MongoConfig
	Redis RedisConfig
	Cache CacheConfig
	OAuth OAuthConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=project_dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type CacheConfig struct {
	Enabled bool          `env:"CACHE_ENABLED, default=true"`
	TTL     time.Duration `env:"CACHE_TTL,     default=5m"`
}

type OAuthConfig struct {
	Google OAuthProvider `env:", prefix=OAUTH_GOOGLE_"`
	GitHub OAuthProvider `env:", prefix=OAUTH_GITHUB_"`
}

// OAuthProvider holds one provider's client registration. A provider without a
// client id is not offered.
type OAuthProvider struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Configured reports whether the provider has a usable client registration.
func (p OAuthProvider) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
// A .env file in the working directory, when present, seeds variables that
// are not already set.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}
