// Package config loads process configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"Tento"`
	Env     string `env:"ENV" envDefault:"DEV"`

	GithubClientID     string `env:"GH_CLIENT_ID"`
	GithubClientSecret string `env:"GH_CLIENT_SECRET"`

	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev_secret_key_change_in_production"`
	AccessTokenHours  int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`
	RefreshTokenHours int    `env:"REFRESH_EXPIRATION_HOURS" envDefault:"168"`

	OAuthTimeout time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`

	// RedisAddr selects the Redis-backed rotation store; empty keeps the
	// in-memory one.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse environment")
	}
	return cfg, nil
}

func (c Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.AccessTokenHours) * time.Hour
}

func (c Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshTokenHours) * time.Hour
}

func (c Config) Addr() string {
	return ":" + c.Port
}
