package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/repository"
)

// SnapshotRepository stores outline snapshots as JSON rows keyed by name.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ForKey returns the snapshot store bound to key.
func (r *SnapshotRepository) ForKey(key string) outline.SnapshotStore {
	return &snapshotStore{db: r.db, key: key}
}

// Keys lists stored snapshot keys starting with prefix, in key order.
func (r *SnapshotRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key FROM snapshots WHERE substr(key, 1, ?) = ? ORDER BY key`,
		len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

type snapshotStore struct {
	db  *DB
	key string
}

func (s *snapshotStore) Load(ctx context.Context) (outline.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return outline.Snapshot{}, repository.ErrNotFound
	}
	if err != nil {
		return outline.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap outline.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return outline.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", s.key, err)
	}
	return snap, nil
}

func (s *snapshotStore) Save(ctx context.Context, snap outline.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, s.key, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
