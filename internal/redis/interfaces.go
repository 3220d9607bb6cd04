package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireReconcileLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseReconcileLock(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
