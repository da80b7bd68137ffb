// Package redisstore keeps outline snapshots in Redis, one JSON string per key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/repository"
)

// Options configures the Redis connection.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// SnapshotRepository hands out Redis-backed snapshot stores.
type SnapshotRepository struct {
	rdb *goredis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*SnapshotRepository, error) {
	if opts.Addr == "" {
		return nil, errors.New("missing redis address")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &SnapshotRepository{rdb: rdb}, nil
}

// ForKey returns the snapshot store bound to key.
func (r *SnapshotRepository) ForKey(key string) outline.SnapshotStore {
	return &snapshotStore{rdb: r.rdb, key: key}
}

// Keys lists stored snapshot keys starting with prefix, in key order.
func (r *SnapshotRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, escapePattern(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// escapePattern quotes glob metacharacters so prefix matches literally.
func escapePattern(prefix string) string {
	return patternEscaper.Replace(prefix)
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Close releases the Redis connection pool.
func (r *SnapshotRepository) Close() error {
	return r.rdb.Close()
}

type snapshotStore struct {
	rdb *goredis.Client
	key string
}

func (s *snapshotStore) Load(ctx context.Context) (outline.Snapshot, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return outline.Snapshot{}, repository.ErrNotFound
	}
	if err != nil {
		return outline.Snapshot{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var snap outline.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return outline.Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", s.key, err)
	}
	return snap, nil
}

func (s *snapshotStore) Save(ctx context.Context, snap outline.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
