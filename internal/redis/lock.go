package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const reconcileLockKey = "lock:reconcile"

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireReconcileLock attempts to acquire the single-flight lock for a
// reconciliation run. Returns true if the lock was acquired, false if a run
// already holds it.
func (s *LockStore) AcquireReconcileLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, reconcileLockKey, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseReconcileLock releases the reconciliation lock.
func (s *LockStore) ReleaseReconcileLock(ctx context.Context) error {
	return s.client.Del(ctx, reconcileLockKey).Err()
}
