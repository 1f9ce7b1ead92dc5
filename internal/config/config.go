package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string
	Port   string

	// Telegram
	BotToken string
	AdminIDs []int64

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Liveness
	KeepAliveURL      string
	KeepAliveInterval time.Duration

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		AppEnv: envRequired("APP_ENV"), // 'development' or 'production'
		Port:   envString("PORT", "10000"),

		BotToken: envRequired("BOT_TOKEN"),
		AdminIDs: envInt64List("ADMIN_IDS"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/filegate.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		KeepAliveURL:      envString("KEEP_ALIVE_URL", keepAliveDefault()),
		KeepAliveInterval: envDuration("KEEP_ALIVE_INTERVAL", 5*time.Minute),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

// keepAliveDefault derives the self-ping target from APP_URL when no
// explicit keep-alive URL is configured. Empty APP_URL disables the pinger.
func keepAliveDefault() string {
	base := os.Getenv("APP_URL")
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/health"
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

// envInt64List parses a comma-separated list of int64s, skipping blanks.
// Invalid entries are fatal: a typo in ADMIN_IDS must not silently lock
// admins out or let strangers in.
func envInt64List(key string) []int64 {
	raw := envRequired(key)
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			slog.Error("config invalid int64 list entry", "key", key, "value", part)
			os.Exit(1)
		}
		out = append(out, id)
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
