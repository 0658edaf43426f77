// Package store persists roster snapshots: whole-database blobs in Redis and
// a relational mirror in Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"roster-crm/models"
)

const (
	DatabaseKey = "roster:database"
	CommentsKey = "roster:comments"
)

// ErrNotFound is returned when no snapshot has been saved yet.
var ErrNotFound = errors.New("store: snapshot not found")

// kv is the subset of *redis.Client the snapshot store uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// SnapshotStore keeps the whole database as one versionless JSON blob, with
// a comments-only key used when the full blob cannot be written.
type SnapshotStore struct {
	client kv
}

// NewSnapshotStore wraps a Redis client. A nil client gives a disabled store
// whose saves are no-ops and whose loads report ErrNotFound.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	if client == nil {
		return &SnapshotStore{}
	}
	return &SnapshotStore{client: client}
}

func newSnapshotStore(client kv) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Enabled reports whether a Redis client is configured.
func (s *SnapshotStore) Enabled() bool { return s != nil && s.client != nil }

// Save writes the full database. On failure it tries to keep at least the
// comments, and still reports the original error.
func (s *SnapshotStore) Save(ctx context.Context, db models.Database) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(db)
	if err == nil {
		err = s.client.Set(ctx, DatabaseKey, data, 0).Err()
	}
	if err == nil {
		return nil
	}
	slog.Error("Failed to save roster snapshot, saving comments only", "error", err)
	if cerr := s.SaveComments(ctx, db.Comments); cerr != nil {
		slog.Error("Failed to save roster comments", "error", cerr)
	}
	return fmt.Errorf("store: save snapshot: %w", err)
}

// SaveComments writes only the comment overlay.
func (s *SnapshotStore) SaveComments(ctx context.Context, comments models.Comments) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return fmt.Errorf("store: encode comments: %w", err)
	}
	if err := s.client.Set(ctx, CommentsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("store: save comments: %w", err)
	}
	return nil
}

// Load returns the saved database, or ErrNotFound.
func (s *SnapshotStore) Load(ctx context.Context) (models.Database, error) {
	var db models.Database
	if err := s.get(ctx, DatabaseKey, &db); err != nil {
		return models.Database{}, err
	}
	db.Normalize()
	return db, nil
}

// LoadComments returns the comments-only fallback blob, or ErrNotFound.
func (s *SnapshotStore) LoadComments(ctx context.Context) (models.Comments, error) {
	var c models.Comments
	if err := s.get(ctx, CommentsKey, &c); err != nil {
		return models.Comments{}, err
	}
	if c.Classes == nil {
		c.Classes = map[string]string{}
	}
	if c.Students == nil {
		c.Students = map[string]string{}
	}
	return c, nil
}

func (s *SnapshotStore) get(ctx context.Context, key string, dst interface{}) error {
	if !s.Enabled() {
		return ErrNotFound
	}
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}
