// Package config loads server settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds server configuration.
type Config struct {
	Port             int
	StorageBackend   string
	DBPath           string
	LogLevel         string
	LogFormat        string
	JWTSecret        string
	JWTTTL           time.Duration
	AuthRequired     bool
	AMQPURL          string
	AMQPExchange     string
	RateLimit        string // limiter format, e.g. "100-M"; empty disables
	BalanceCacheSize int
	ShutdownTimeout  time.Duration
}

const insecureSecret = "change-me-trip-ledger-secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("STORAGE_BACKEND", BackendSQLite)
	v.SetDefault("DB_PATH", "./data/ledger.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("JWT_SECRET", insecureSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "tripledger.events")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("BALANCE_CACHE_SIZE", 1024)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
}

// Load reads the configuration. Values come, in increasing priority, from
// defaults, configFile (when not empty), a .env file in the working directory
// and the process environment.
func Load(configFile string) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	v.AutomaticEnv()

	jwtTTL, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL %q: %w", v.GetString("JWT_TTL"), err)
	}
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v.GetString("SHUTDOWN_TIMEOUT"), err)
	}

	return &Config{
		Port:             v.GetInt("PORT"),
		StorageBackend:   strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DBPath:           v.GetString("DB_PATH"),
		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTTTL:           jwtTTL,
		AuthRequired:     v.GetBool("AUTH_REQUIRED"),
		AMQPURL:          v.GetString("AMQP_URL"),
		AMQPExchange:     v.GetString("AMQP_EXCHANGE"),
		RateLimit:        v.GetString("RATE_LIMIT"),
		BalanceCacheSize: v.GetInt("BALANCE_CACHE_SIZE"),
		ShutdownTimeout:  shutdownTimeout,
	}, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	switch c.StorageBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q must be %s or %s", c.StorageBackend, BackendSQLite, BackendMemory))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.AuthRequired && c.JWTSecret == insecureSecret {
		errs = append(errs, errors.New("JWT_SECRET must be changed when AUTH_REQUIRED is set"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimit != "" {
		if _, err := c.Rate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.BalanceCacheSize <= 0 {
		errs = append(errs, fmt.Errorf("BALANCE_CACHE_SIZE %d must be positive", c.BalanceCacheSize))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// Rate parses RateLimit.
func (c *Config) Rate() (limiter.Rate, error) {
	rate, err := limiter.NewRateFromFormatted(c.RateLimit)
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("RATE_LIMIT %q: %w", c.RateLimit, err)
	}
	return rate, nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left at its default.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == insecureSecret
}
