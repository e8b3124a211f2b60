// Package cache stores study session snapshots so an active session
// survives a server restart.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

// SnapshotStore saves and loads one snapshot per learner.
// Load returns nil, nil when the learner has no snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.StudySnapshot) error
	Load(ctx context.Context, learnerID string) (*models.StudySnapshot, error)
	Delete(ctx context.Context, learnerID string) error
}

const (
	snapshotKeyPrefix  = "vocabdrill:snapshot:"
	DefaultSnapshotTTL = 7 * 24 * time.Hour
)

// RedisSnapshotStore keeps snapshots as JSON values with a TTL
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore connects to Redis and verifies the connection
func NewRedisSnapshotStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}, nil
}

func snapshotKey(learnerID string) string {
	return snapshotKeyPrefix + learnerID
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap *models.StudySnapshot) error {
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snap.LearnerID), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, learnerID string) (*models.StudySnapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, learnerID string) error {
	if err := s.client.Del(ctx, snapshotKey(learnerID)).Err(); err != nil {
		return fmt.Errorf("error deleting key %s: %w", snapshotKey(learnerID), err)
	}
	return nil
}

// Close closes the redis client
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}

// DBSnapshotStore keeps snapshots in the study_snapshots table
type DBSnapshotStore struct {
	repo *repository.StudyRepository
}

func NewDBSnapshotStore(repo *repository.StudyRepository) *DBSnapshotStore {
	return &DBSnapshotStore{repo: repo}
}

func (s *DBSnapshotStore) Save(_ context.Context, snap *models.StudySnapshot) error {
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return s.repo.SaveSnapshot(snap.LearnerID, string(val))
}

func (s *DBSnapshotStore) Load(_ context.Context, learnerID string) (*models.StudySnapshot, error) {
	payload, err := s.repo.GetSnapshot(learnerID)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, nil
	}
	return decodeSnapshot([]byte(payload))
}

func (s *DBSnapshotStore) Delete(_ context.Context, learnerID string) error {
	return s.repo.DeleteSnapshot(learnerID)
}

func decodeSnapshot(data []byte) (*models.StudySnapshot, error) {
	var snap models.StudySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
