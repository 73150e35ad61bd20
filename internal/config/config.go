package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// refused in production.
const DevJWTSecret = "dev-secret-change-in-production"

// Store drivers selectable through STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
)

type Config struct {
	Port         string `env:"PORT" env-default:"8080"`
	Env          string `env:"ENV" env-default:"development"`
	LogLevelName string `env:"LOG_LEVEL" env-default:"info"`
	LogLevel     slog.Level
	Store        StoreConfig
	Auth         AuthConfig
	Limit        RateLimitConfig
}

type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" env-default:"memory"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-default:"dev-secret-change-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" env-default:"168h"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `env:"RATE_LIMIT_BURST" env-default:"10"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)

	var errs []error

	if err := cfg.LogLevel.UnmarshalText([]byte(cfg.LogLevelName)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	switch cfg.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverMySQL:
		if cfg.Store.DatabaseDSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN must be set when STORE_DRIVER=mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of memory, mysql, redis", cfg.Store.Driver))
	}

	if cfg.Auth.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be > 0"))
	}
	if cfg.Limit.RPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be > 0"))
	}
	if cfg.Limit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be > 0"))
	}
	if cfg.Env == "production" && cfg.Auth.JWTSecret == DevJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production environment"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
