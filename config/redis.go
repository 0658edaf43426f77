// roster-crm/config/redis.go
package config

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ConnectRedis opens the snapshot store. Without REDIS_ADDR, or when the
// server does not answer, RDB stays nil and snapshots are not persisted.
func ConnectRedis(ctx context.Context, cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR is not set, roster snapshots will not be persisted")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		_ = client.Close()
		return nil
	}

	RDB = client
	slog.Info("Connected to Redis")
	return RDB
}
