// roster-crm/config/config.go

package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config is read once from the environment at startup.
type Config struct {
	AppPort    string
	GinMode    string
	DBURL      string
	RedisAddr  string
	SchemaPath string
	LogLevel   string
	LogFormat  string
	MaxUpload  int64
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the configuration. DB_URL and REDIS_ADDR are optional; without
// them the roster lives in memory only.
func Load() *Config {
	return &Config{
		AppPort:    get("APP_PORT", "8080"),
		GinMode:    get("GIN_MODE", "release"),
		DBURL:      os.Getenv("DB_URL"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		SchemaPath: os.Getenv("SCHEMA_PATH"),
		LogLevel:   get("LOG_LEVEL", "info"),
		LogFormat:  get("LOG_FORMAT", "text"),
		MaxUpload:  int64(getInt("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func getInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// SetupLogger installs a stdout logger as the slog default and returns it.
func SetupLogger(cfg *Config) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// NewLogger builds a logger writing to w with the configured level and format.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(cfg.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
