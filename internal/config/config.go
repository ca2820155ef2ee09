package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tradingzen/backend/internal/auth"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Environment string
	ServerPort  string
	LogLevel    string

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	RedisURL      string

	SessionSecret string
	SessionExpiry time.Duration

	FrontendURL        string
	CORSAllowedOrigins []string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordCallbackURL  string
	OAuthStateTTL       time.Duration

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration

	// Warnings collects values that could not be parsed and fell back to
	// their default. The logger is not ready while Load runs, so main
	// reports them.
	Warnings []string
}

func Load() *Config {
	cfg := &Config{}

	// Try to load .env file, but don't fail if it doesn't exist
	// (Docker containers use environment variables directly)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		cfg.warn("could not read .env file: %v", err)
	}

	cfg.Environment = getEnv("ENVIRONMENT", "development")
	cfg.ServerPort = getEnv("SERVER_PORT", ":5000")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "data/tradingzen.db")
	cfg.MongoURI = os.Getenv("MONGODB_URI")
	cfg.MongoDatabase = getEnv("MONGODB_DATABASE", "tradingzen")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	cfg.SessionExpiry = cfg.getEnvAsDuration("SESSION_EXPIRY", "168h")

	cfg.FrontendURL = os.Getenv("FRONTEND_URL")
	cfg.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	cfg.DiscordClientID = os.Getenv("DISCORD_CLIENT_ID")
	cfg.DiscordClientSecret = os.Getenv("DISCORD_CLIENT_SECRET")
	cfg.DiscordCallbackURL = os.Getenv("DISCORD_CALLBACK_URL")
	cfg.OAuthStateTTL = cfg.getEnvAsDuration("OAUTH_STATE_TTL", "10m")

	cfg.RateLimitMaxRequests = cfg.getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100)
	cfg.RateLimitWindow = cfg.getEnvAsDuration("RATE_LIMIT_WINDOW", "1m")

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.IsProduction() && c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	if c.SessionExpiry <= 0 {
		errs = append(errs, errors.New("SESSION_EXPIRY must be positive"))
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) DiscordConfig() auth.DiscordConfig {
	return auth.DiscordConfig{
		ClientID:     c.DiscordClientID,
		ClientSecret: c.DiscordClientSecret,
		CallbackURL:  c.DiscordCallbackURL,
	}
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt retrieves environment variable as int with default value
func (c *Config) getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		c.warn("invalid %s value, using default: %d", key, defaultVal)
		return defaultVal
	}
	return val
}

// getEnvAsDuration retrieves environment variable as duration with default value
func (c *Config) getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		c.warn("invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
