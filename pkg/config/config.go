package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	StorePostgres = "postgres"
	// StoreMemory copies the whole ledger on every transaction; for tests
	// and local runs only.
	StoreMemory = "memory"
)

type Config struct {
	Port        string
	Store       string
	PostgresURL string

	MongoURI      string
	MongoDatabase string

	JWTSecret string

	PointValue           decimal.Decimal
	PointsLifetimeMonths int

	SweepSchedule string
	SweepTimeout  time.Duration

	LogLevel  logrus.Level
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          get("PORT", "8080"),
		Store:         get("STORE", StorePostgres),
		PostgresURL:   getenv("POSTGRESQL_URL"),
		MongoURI:      getenv("MONGODB_URI"),
		MongoDatabase: get("MONGODB_DATABASE", "loyalty"),
		JWTSecret:     getenv("JWT_SECRET"),
		SweepSchedule: get("EXPIRY_SWEEP_SCHEDULE", "*/15 * * * *"),
		LogFormat:     get("LOG_FORMAT", "text"),
	}

	if cfg.Store != StorePostgres && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	cfg.PointValue, err = decimal.NewFromString(get("POINT_VALUE", "0.01"))
	if err != nil || cfg.PointValue.IsNegative() {
		return nil, fmt.Errorf("invalid POINT_VALUE %q", getenv("POINT_VALUE"))
	}

	cfg.PointsLifetimeMonths, err = strconv.Atoi(get("POINTS_LIFETIME_MONTHS", "12"))
	if err != nil || cfg.PointsLifetimeMonths < 1 {
		return nil, fmt.Errorf("invalid POINTS_LIFETIME_MONTHS %q", getenv("POINTS_LIFETIME_MONTHS"))
	}

	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_SWEEP_SCHEDULE %q: %w", cfg.SweepSchedule, err)
	}

	cfg.SweepTimeout, err = time.ParseDuration(get("EXPIRY_SWEEP_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_SWEEP_TIMEOUT: %w", err)
	}

	cfg.LogLevel, err = logrus.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// ConfigureLogging applies level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	logrus.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
