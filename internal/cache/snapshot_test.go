package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

func sampleSnapshot(learnerID string) *models.StudySnapshot {
	return &models.StudySnapshot{
		LearnerID:    learnerID,
		SessionID:    "s-1",
		SourceKind:   models.SourceVocab,
		SourceID:     3,
		Style:        "typed",
		Direction:    "englishToKorean",
		BatchSize:    5,
		WordOrder:    []models.WordID{"3", "1", "2"},
		CurrentIndex: 1,
		IncorrectIDs: []models.WordID{"3"},
		StartedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

// exerciseStore runs the same contract against any SnapshotStore
func exerciseStore(t *testing.T, store SnapshotStore) {
	ctx := context.Background()

	missing, err := store.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	snap := sampleSnapshot("learner-1")
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, "learner-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.WordOrder, got.WordOrder)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 5, got.BatchSize)

	snap.CurrentIndex = 2
	require.NoError(t, store.Save(ctx, snap))
	got, err = store.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentIndex)

	require.NoError(t, store.Delete(ctx, "learner-1"))
	got, err = store.Load(ctx, "learner-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDBSnapshotStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	db, err := database.Initialize(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations("../../migrations"))

	exerciseStore(t, NewDBSnapshotStore(repository.NewStudyRepository(db)))
}

func TestRedisSnapshotStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	store, err := NewRedisSnapshotStore(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestNewRedisSnapshotStoreUnreachable(t *testing.T) {
	_, err := NewRedisSnapshotStore(context.Background(), "127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}
