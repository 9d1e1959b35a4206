package config

import (
	"fmt"
	"net"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the application configuration, loaded from environment
// variables with optional defaults.
type Config struct {
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	Port            string        `env:"PORT" env-default:"8080"`
	DatabasePath    string        `env:"DATABASE_PATH" env-default:"./tasktrack.db"`
	JWTSecret       string        `env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	CleanupSchedule string        `env:"CLEANUP_SCHEDULE" env-default:"@hourly"`
	StatsSchedule   string        `env:"STATS_SCHEDULE" env-default:"@every 5m"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}
