package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppName:            "vismay-core",
		ServerPort:         "8080",
		ServerReadTimeout:  15 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerIdleTimeout:  120 * time.Second,
		RequestTimeout:     30 * time.Second,
		DatabaseURL:        "postgres://localhost:5432/vismay",
		DBMaxConns:         10,
		DBMinConns:         2,
		JWTSecret:          "a-sufficiently-long-signing-secret",
		JWTAccessTTL:       30 * time.Minute,
		JWTRefreshTTL:      168 * time.Hour,
		BcryptCost:         12,
		RateLimitRPM:       100,
		AuthRateLimitRPM:   10,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete configuration", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("requires a signing secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "   "
		require.Error(t, cfg.Validate())
	})

	t.Run("requires a database url", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseURL = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects an access lifetime at or above the refresh lifetime", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTAccessTTL = cfg.JWTRefreshTTL
		require.Error(t, cfg.Validate())

		cfg.JWTAccessTTL = cfg.JWTRefreshTTL + time.Hour
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects non positive lifetimes", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTAccessTTL = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects inverted pool bounds", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBMinConns = 20
		require.Error(t, cfg.Validate())
	})
}

func TestEnvHelpers(t *testing.T) {
	t.Run("getEnv falls back on empty", func(t *testing.T) {
		t.Setenv("CFG_TEST_STR", "  ")
		require.Equal(t, "fallback", getEnv("CFG_TEST_STR", "fallback"))

		t.Setenv("CFG_TEST_STR", " value ")
		require.Equal(t, "value", getEnv("CFG_TEST_STR", "fallback"))
	})

	t.Run("getInt ignores junk", func(t *testing.T) {
		t.Setenv("CFG_TEST_INT", "not-a-number")
		require.Equal(t, 42, getInt("CFG_TEST_INT", 42))

		t.Setenv("CFG_TEST_INT", "7")
		require.Equal(t, 7, getInt("CFG_TEST_INT", 42))
	})

	t.Run("getDuration parses go durations", func(t *testing.T) {
		t.Setenv("CFG_TEST_DUR", "45m")
		require.Equal(t, 45*time.Minute, getDuration("CFG_TEST_DUR", time.Hour))

		t.Setenv("CFG_TEST_DUR", "bogus")
		require.Equal(t, time.Hour, getDuration("CFG_TEST_DUR", time.Hour))
	})

	t.Run("splitCSV trims and drops empties", func(t *testing.T) {
		require.Equal(t, []string{"a", "b"}, splitCSV(" a , , b "))
		require.Nil(t, splitCSV("   "))
	})
}
