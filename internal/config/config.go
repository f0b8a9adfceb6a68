package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Listen        string
	MetricsListen string
	Secret        string
	TokenTTL      time.Duration

	StoreDriver    string
	DbPath         string
	MigrationsPath string
	BadgerPath     string
	SheetID        string
	SheetsCreds    string
	CacheTTL       time.Duration

	SessionDriver string
	SessionIdle   time.Duration
	RedisURL      string

	RabbitURL      string
	RabbitExchange string

	OpenAIKey     string
	OpenAIBaseURL string
	AdviceTimeout time.Duration

	HashPasswords bool

	LogFormat string
	LogLevel  string
}

func NewConfig() Config {
	var cfg Config
	cfg.LoadEnv()
	return cfg
}

func GetOrDefault(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

// GetDurationOrDefault accepts Go durations ("20s") or plain seconds ("20").
func GetDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func GetBoolOrDefault(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func (c *Config) LoadEnv() {
	c.Listen = GetOrDefault("SERVER_ADDRESS", ":8080")
	c.MetricsListen = GetOrDefault("METRICS_ADDRESS", ":9000")
	c.Secret = GetOrDefault("JWT_SECRET", "dev-secret")
	c.TokenTTL = GetDurationOrDefault("TOKEN_TTL", 24*time.Hour)

	c.StoreDriver = GetOrDefault("STORE_DRIVER", "sheets")
	c.DbPath = GetOrDefault("DATABASE_URL", "")
	c.MigrationsPath = GetOrDefault("MIGRATIONS_PATH", "migrations")
	c.BadgerPath = GetOrDefault("BADGER_PATH", "")
	c.SheetID = GetOrDefault("SHEET_ID", "")
	c.SheetsCreds = GetOrDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json")
	c.CacheTTL = GetDurationOrDefault("CACHE_TTL", 20*time.Second)

	c.SessionDriver = GetOrDefault("SESSION_DRIVER", "memory")
	c.SessionIdle = GetDurationOrDefault("SESSION_IDLE_TIMEOUT", 300*time.Second)
	c.RedisURL = GetOrDefault("REDIS_URL", "redis://localhost:6379/0")

	c.RabbitURL = GetOrDefault("RABBIT_URL", "")
	c.RabbitExchange = GetOrDefault("RABBIT_EXCHANGE", "kisaangrow.events")

	c.OpenAIKey = GetOrDefault("OPENAI_API_KEY", "")
	c.OpenAIBaseURL = GetOrDefault("OPENAI_BASE_URL", "")
	c.AdviceTimeout = GetDurationOrDefault("ADVICE_TIMEOUT", 10*time.Second)

	c.HashPasswords = GetBoolOrDefault("HASH_PASSWORDS", false)

	c.LogFormat = GetOrDefault("LOG_FORMAT", "pretty")
	c.LogLevel = GetOrDefault("LOG_LEVEL", "info")
}
