package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"JWT_SECRET": "x"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "loyalty", cfg.MongoDatabase)
	assert.Equal(t, "0.01", cfg.PointValue.String())
	assert.Equal(t, 12, cfg.PointsLifetimeMonths)
	assert.Equal(t, "*/15 * * * *", cfg.SweepSchedule)
	assert.Equal(t, 5*time.Minute, cfg.SweepTimeout)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"JWT_SECRET":             "x",
		"PORT":                   "9000",
		"STORE":                  "memory",
		"POINT_VALUE":            "0.05",
		"POINTS_LIFETIME_MONTHS": "6",
		"EXPIRY_SWEEP_SCHEDULE":  "0 3 * * *",
		"LOG_LEVEL":              "debug",
		"LOG_FORMAT":             "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "0.05", cfg.PointValue.String())
	assert.Equal(t, 6, cfg.PointsLifetimeMonths)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"unknown store":    {"JWT_SECRET": "x", "STORE": "redis"},
		"bad point value":  {"JWT_SECRET": "x", "POINT_VALUE": "abc"},
		"negative value":   {"JWT_SECRET": "x", "POINT_VALUE": "-1"},
		"bad lifetime":     {"JWT_SECRET": "x", "POINTS_LIFETIME_MONTHS": "0"},
		"bad schedule":     {"JWT_SECRET": "x", "EXPIRY_SWEEP_SCHEDULE": "every hour"},
		"bad sweep budget": {"JWT_SECRET": "x", "EXPIRY_SWEEP_TIMEOUT": "soon"},
		"bad level":        {"JWT_SECRET": "x", "LOG_LEVEL": "loud"},
		"bad format":       {"JWT_SECRET": "x", "LOG_FORMAT": "xml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}
