package outline

import "context"

// SnapshotStore persists a single outline snapshot under a fixed key.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// SnapshotStoreFactory binds a SnapshotStore to a storage key.
type SnapshotStoreFactory interface {
	ForKey(key string) SnapshotStore
}

// SnapshotKeyLister is implemented by factories that can enumerate stored keys.
type SnapshotKeyLister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}
