package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// LoginLockout counts failed logins per username and blocks the name for a
// cool-down once the count reaches its maximum.
type LoginLockout interface {
	IsLocked(ctx context.Context, username string) (locked bool, retryAfter time.Duration)
	RecordFailure(ctx context.Context, username string)
	RecordSuccess(ctx context.Context, username string)
}

type lockoutEntry struct {
	failures    int
	lockedUntil time.Time
}

// MemoryLockout is a LoginLockout for single-instance deployment.
type MemoryLockout struct {
	mu       sync.Mutex
	data     map[string]*lockoutEntry
	max      int
	cooldown time.Duration
	now      func() time.Time
}

// NewMemoryLockout returns a lockout with the given limits. maxFailures 0
// disables it.
func NewMemoryLockout(maxFailures int, cooldown time.Duration) *MemoryLockout {
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &MemoryLockout{
		data:     make(map[string]*lockoutEntry),
		max:      maxFailures,
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (s *MemoryLockout) IsLocked(_ context.Context, username string) (bool, time.Duration) {
	if s.max <= 0 {
		return false, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[username]
	if !ok {
		return false, 0
	}

	now := s.now()
	if now.Before(e.lockedUntil) {
		return true, e.lockedUntil.Sub(now)
	}
	return false, 0
}

func (s *MemoryLockout) RecordFailure(_ context.Context, username string) {
	if s.max <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.data[username]
	if e == nil {
		e = &lockoutEntry{}
		s.data[username] = e
	}

	// A lock that has run out starts a fresh count.
	now := s.now()
	if !e.lockedUntil.IsZero() && !now.Before(e.lockedUntil) {
		e.failures = 0
		e.lockedUntil = time.Time{}
	}
	e.failures++
	if e.failures >= s.max {
		e.lockedUntil = now.Add(s.cooldown)
	}
}

func (s *MemoryLockout) RecordSuccess(_ context.Context, username string) {
	if s.max <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, username)
}

const (
	lockoutFailuresPrefix = "lockout:failures:"
	lockoutLockedPrefix   = "lockout:locked:"
)

// RedisLockout keeps the counters in Redis so every instance sees the same
// lock. Redis errors never lock anyone out.
type RedisLockout struct {
	client   *redis.Client
	max      int
	cooldown time.Duration
}

func NewRedisLockout(client *redis.Client, maxFailures int, cooldown time.Duration) *RedisLockout {
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &RedisLockout{client: client, max: maxFailures, cooldown: cooldown}
}

func (s *RedisLockout) IsLocked(ctx context.Context, username string) (bool, time.Duration) {
	if s.max <= 0 {
		return false, 0
	}
	ttl, err := s.client.PTTL(ctx, lockoutLockedPrefix+username).Result()
	if err != nil {
		log.Warn().Err(err).Msg("lockout check failed, allowing login attempt")
		return false, 0
	}
	// PTTL is negative when the key is missing or has no expiry.
	if ttl <= 0 {
		return false, 0
	}
	return true, ttl
}

func (s *RedisLockout) RecordFailure(ctx context.Context, username string) {
	if s.max <= 0 {
		return
	}
	key := lockoutFailuresPrefix + username

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to record login failure")
		return
	}

	if incr.Val() >= int64(s.max) {
		pipe := s.client.TxPipeline()
		pipe.Set(ctx, lockoutLockedPrefix+username, fmt.Sprint(incr.Val()), s.cooldown)
		pipe.Del(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to lock username")
		}
	}
}

func (s *RedisLockout) RecordSuccess(ctx context.Context, username string) {
	if s.max <= 0 {
		return
	}
	if err := s.client.Del(ctx, lockoutFailuresPrefix+username, lockoutLockedPrefix+username).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to clear login failures")
	}
}

var (
	_ LoginLockout = (*MemoryLockout)(nil)
	_ LoginLockout = (*RedisLockout)(nil)
)
