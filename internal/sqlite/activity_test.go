package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/deckline/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func activityOpts(projectID string) activity.ListActivityOptions {
	return activity.ListActivityOptions{ProjectID: projectID}
}

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entry1 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeProjectCreated,
		Summary:      "Created project",
		Details:      `{"id":"p1"}`,
	}
	entry2 := &activity.ActivityEntry{
		ProjectID:    "p1",
		ActivityType: activity.TypeDocumentSaved,
		Summary:      "Saved deck",
	}

	require.NoError(t, repo.Log(ctx, "tenant1", entry1))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Log(ctx, "tenant1", entry2))
	require.NotZero(t, entry1.ID)

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"id":"p1"}`, entries[1].Details)
}

func TestActivityRepository_FiltersAndTenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{
		CardID:       "c1",
		ActivityType: activity.TypeCardMoved,
		Summary:      "Moved card",
	}))
	require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{
		ActivityType: activity.TypeOutlineReset,
		Summary:      "Reset",
	}))

	moved := activity.TypeCardMoved
	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ActivityType: &moved})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "c1", entries[0].CardID)

	entries, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, "tenant2", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 0)
}
