package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/rpggio/deckline/internal/redisstore"
	"github.com/rpggio/deckline/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := redisstore.New(context.Background(), redisstore.Options{})
	require.Error(t, err)
}

func TestNew_FailsWhenUnreachable(t *testing.T) {
	_, err := redisstore.New(context.Background(), redisstore.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
	})
	require.ErrorContains(t, err, "redis ping")
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("DECKLINE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DECKLINE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	repo, err := redisstore.New(ctx, redisstore.Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store := repo.ForKey("deckline-test/" + uuid.NewString())
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	snap := outline.Snapshot{
		CurrentPrompt: "tides",
		Outlines:      []outline.OutlineCard{{ID: "a", Title: "Moon", Order: 1}},
	}
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

func TestSnapshotRepository_KeysByPrefix(t *testing.T) {
	addr := os.Getenv("DECKLINE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("DECKLINE_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	repo, err := redisstore.New(ctx, redisstore.Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	prefix := "deckline-test-" + uuid.NewString() + "/"
	for _, tenant := range []string{"b", "a"} {
		require.NoError(t, repo.ForKey(prefix+tenant).Save(ctx, outline.Snapshot{}))
	}

	keys, err := repo.Keys(ctx, prefix)
	require.NoError(t, err)
	require.Equal(t, []string{prefix + "a", prefix + "b"}, keys)
}
