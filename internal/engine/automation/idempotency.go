package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SendGuard closes the restart-mid-flight gap (Open Question 2): before the
// engine calls send_invitation/send_message for a given enrollment step, it
// takes this guard. If another tick (or a process that crashed mid-send and
// restarted) already holds it, the caller skips the send rather than risk a
// duplicate outbound message.
type SendGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSendGuard(rdb *redis.Client, ttl time.Duration) *SendGuard {
	if ttl <= 0 {
		ttl = 45 * time.Second
	}
	return &SendGuard{rdb: rdb, ttl: ttl}
}

func guardKey(enrollmentID string, stepOrder int) string {
	return fmt.Sprintf("send-guard:%s:%d", enrollmentID, stepOrder)
}

// Acquire returns true if the caller may proceed with the send. A false
// result means a send for this (enrollment, step) is already in flight
// elsewhere and must not be duplicated.
func (g *SendGuard) Acquire(ctx context.Context, enrollmentID string, stepOrder int) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, guardKey(enrollmentID, stepOrder), "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release clears the guard once the send has durably completed (success or
// a failure that the caller has already persisted), so a legitimate retry on
// a later tick is not blocked by a stale guard.
func (g *SendGuard) Release(ctx context.Context, enrollmentID string, stepOrder int) error {
	return g.rdb.Del(ctx, guardKey(enrollmentID, stepOrder)).Err()
}

// QuotaMirror mirrors a user's daily invitation counter into Redis so a
// scheduler restart mid-day can recover the count without a Postgres round
// trip on every single gate check. Postgres remains authoritative; this is a
// fast-path cache invalidated on every write.
type QuotaMirror struct {
	rdb *redis.Client
}

func NewQuotaMirror(rdb *redis.Client) *QuotaMirror {
	return &QuotaMirror{rdb: rdb}
}

func quotaKey(userID string) string {
	return fmt.Sprintf("automation:daily-count:%s", userID)
}

// Increment bumps the mirrored counter and sets it to expire at the end of
// the UTC calendar day, so a stale mirror never outlives the day it counts.
func (m *QuotaMirror) Increment(ctx context.Context, userID string, now time.Time) (int64, error) {
	key := quotaKey(userID)
	count, err := m.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
		m.rdb.ExpireAt(ctx, key, endOfDay)
	}
	return count, nil
}

// Invalidate drops the mirror, forcing the next read to fall back to
// Postgres — used after ResetDailyCounterIfStale runs.
func (m *QuotaMirror) Invalidate(ctx context.Context, userID string) error {
	return m.rdb.Del(ctx, quotaKey(userID)).Err()
}
