package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "SERVER_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"MONGODB_URI", "MONGODB_DATABASE", "REDIS_URL", "SESSION_SECRET", "SESSION_EXPIRY",
		"FRONTEND_URL", "CORS_ALLOWED_ORIGINS", "DISCORD_CLIENT_ID", "DISCORD_CLIENT_SECRET",
		"DISCORD_CALLBACK_URL", "OAUTH_STATE_TTL", "RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":5000", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "data/tradingzen.db", cfg.SQLitePath)
	assert.Equal(t, "tradingzen", cfg.MongoDatabase)
	assert.Equal(t, 168*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, 10*time.Minute, cfg.OAuthStateTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Empty(t, cfg.Warnings)
	assert.False(t, cfg.DiscordConfig().Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SESSION_EXPIRY", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DISCORD_CLIENT_ID", "id")
	t.Setenv("DISCORD_CLIENT_SECRET", "secret")
	t.Setenv("DISCORD_CALLBACK_URL", "https://api.example.com/auth/discord/callback")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "20")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 20, cfg.RateLimitMaxRequests)
	assert.True(t, cfg.DiscordConfig().Enabled())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_EXPIRY", "a week")
	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "many")

	cfg := Load()

	assert.Equal(t, 168*time.Hour, cfg.SessionExpiry)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.Len(t, cfg.Warnings, 2)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:          "development",
			StorageDriver:        DriverPostgres,
			DatabaseURL:          "postgres://localhost/tradingzen",
			SessionExpiry:        time.Hour,
			RateLimitMaxRequests: 100,
			RateLimitWindow:      time.Minute,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres_without_url", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "sqlite_without_url", mutate: func(c *Config) {
			c.StorageDriver = DriverSQLite
			c.DatabaseURL = ""
			c.SQLitePath = "data/test.db"
		}},
		{name: "mongo_without_uri", mutate: func(c *Config) { c.StorageDriver = DriverMongo }, wantErr: "MONGODB_URI"},
		{name: "unknown_driver", mutate: func(c *Config) { c.StorageDriver = "mysql" }, wantErr: "unknown STORAGE_DRIVER"},
		{name: "production_without_secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: "SESSION_SECRET"},
		{name: "development_without_secret", mutate: func(c *Config) { c.SessionSecret = "" }},
		{name: "zero_window", mutate: func(c *Config) { c.RateLimitWindow = 0 }, wantErr: "rate limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
