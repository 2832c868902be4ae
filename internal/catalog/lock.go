package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	lockTimeout      = 5 * time.Second
	lockPollInterval = 250 * time.Millisecond
)

// AdvisoryLock serializes import runs across processes using a Postgres
// advisory lock. Advisory locks are session-scoped, so the lock pins one
// pool connection between Acquire and Release.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// NewAdvisoryLock creates a lock backed by the given pool.
func NewAdvisoryLock(pool *pgxpool.Pool) *AdvisoryLock {
	return &AdvisoryLock{pool: pool}
}

var _ Locker = (*AdvisoryLock)(nil)

// Acquire tries to take the named lock, polling for up to five seconds.
// It returns false without error when the lock stays held elsewhere.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string) (bool, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock connection: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	for {
		var locked bool
		err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, name).Scan(&locked)
		if err != nil {
			conn.Release()
			return false, fmt.Errorf("failed to try advisory lock: %w", err)
		}
		if locked {
			l.conn = conn
			return true, nil
		}
		if time.Now().After(deadline) {
			conn.Release()
			return false, nil
		}
		select {
		case <-ctx.Done():
			conn.Release()
			return false, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// Release unlocks the named lock and returns the pinned connection to the
// pool. Safe to call when Acquire did not succeed.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Release()
		l.conn = nil
	}()
	var unlocked bool
	if err := l.conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, name).Scan(&unlocked); err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}
	if !unlocked {
		return fmt.Errorf("advisory lock %q was not held by this session", name)
	}
	return nil
}
