package config

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "GIN_MODE", "DB_URL", "REDIS_ADDR", "SCHEMA_PATH", "LOG_LEVEL", "LOG_FORMAT", "MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Empty(t, cfg.DBURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.EqualValues(t, 32<<20, cfg.MaxUpload)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SCHEMA_PATH", "/etc/roster/schema.yaml")
	t.Setenv("MAX_UPLOAD_MB", "5")
	cfg := Load()
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "/etc/roster/schema.yaml", cfg.SchemaPath)
	assert.EqualValues(t, 5<<20, cfg.MaxUpload)

	t.Setenv("MAX_UPLOAD_MB", "lots")
	assert.EqualValues(t, 32<<20, Load().MaxUpload)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "sheet", "G1")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "G1", entry["sheet"])
}

func TestOptionalBackendsDisabled(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, ConnectRedis(context.Background(), cfg))
	assert.Nil(t, ConnectDB(cfg))
}
