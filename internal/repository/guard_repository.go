package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis-backed guards shared by every API replica. Each has an in-memory twin used when Redis is
// disabled, which only guards a single process.

// RedisApprovalCounter keeps fixed-window auto-approval counters.
type RedisApprovalCounter struct {
	client *redis.Client
	prefix string
}

// NewRedisApprovalCounter constructs the counter.
func NewRedisApprovalCounter(client *redis.Client) *RedisApprovalCounter {
	return &RedisApprovalCounter{client: client, prefix: "auto_approval:count:"}
}

// reserveSlotScript increments the window counter, starts the window on the first slot and hands
// the slot straight back when the limit is exceeded. PEXPIRE keeps it compatible with Redis 6.
var reserveSlotScript = redis.NewScript(`
local taken = redis.call("INCR", KEYS[1])
if taken == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if taken > tonumber(ARGV[1]) then
  redis.call("DECR", KEYS[1])
  return 0
end
return 1`)

// Reserve takes one slot from key if fewer than limit have been taken in the current window.
func (c *RedisApprovalCounter) Reserve(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	reserved, err := reserveSlotScript.Run(ctx, c.client, []string{c.prefix + key}, limit, window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("reserve approval slot %s: %w", key, err)
	}
	return reserved == 1, nil
}

// Release returns a previously reserved slot.
func (c *RedisApprovalCounter) Release(ctx context.Context, key string) error {
	if err := c.client.Decr(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("release approval slot %s: %w", key, err)
	}
	return nil
}

// Count returns the slots taken in the current window.
func (c *RedisApprovalCounter) Count(ctx context.Context, key string) (int, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read approval count %s: %w", key, err)
	}
	return value, nil
}

// RedisBatchLock guarantees a single in-flight batch per key.
type RedisBatchLock struct {
	client *redis.Client
	prefix string
}

// NewRedisBatchLock constructs the lock.
func NewRedisBatchLock(client *redis.Client) *RedisBatchLock {
	return &RedisBatchLock{client: client, prefix: "verification:batch_lock:"}
}

var releaseLockScript = redis.NewScript(`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) end return 0`)

// Acquire takes the lock for key. The returned release function is safe to call once the lock has
// expired or been taken by another holder.
func (l *RedisBatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	full := l.prefix + key
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire batch lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseLockScript.Run(ctx, l.client, []string{full}, token).Err()
	}
	return release, true, nil
}

// RedisPresenceTracker records recently active coordinators.
type RedisPresenceTracker struct {
	client *redis.Client
	prefix string
}

// NewRedisPresenceTracker constructs the tracker.
func NewRedisPresenceTracker(client *redis.Client) *RedisPresenceTracker {
	return &RedisPresenceTracker{client: client, prefix: "presence:coordinator:"}
}

// Touch marks userID as online for ttl.
func (p *RedisPresenceTracker) Touch(ctx context.Context, userID string, ttl time.Duration) error {
	if err := p.client.Set(ctx, p.prefix+userID, time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("touch presence %s: %w", userID, err)
	}
	return nil
}

// AnyOnline reports whether at least one coordinator is online.
func (p *RedisPresenceTracker) AnyOnline(ctx context.Context) (bool, error) {
	iter := p.client.Scan(ctx, 0, p.prefix+"*", 100).Iterator()
	if iter.Next(ctx) {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("scan presence: %w", err)
	}
	return false, nil
}

// RedisBatchProgress shares batch progress snapshots so any replica can report a running batch.
type RedisBatchProgress struct {
	client *redis.Client
	prefix string
}

// NewRedisBatchProgress constructs the store.
func NewRedisBatchProgress(client *redis.Client) *RedisBatchProgress {
	return &RedisBatchProgress{client: client, prefix: "verification:batch_progress:"}
}

// Save stores the latest snapshot for key.
func (p *RedisBatchProgress) Save(ctx context.Context, key string, snapshot []byte, ttl time.Duration) error {
	if err := p.client.Set(ctx, p.prefix+key, snapshot, ttl).Err(); err != nil {
		return fmt.Errorf("save batch progress %s: %w", key, err)
	}
	return nil
}

// Load returns the latest snapshot for key, or nil when none was saved.
func (p *RedisBatchProgress) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := p.client.Get(ctx, p.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load batch progress %s: %w", key, err)
	}
	return payload, nil
}

// MemoryApprovalCounter is the single-process counterpart of RedisApprovalCounter.
type MemoryApprovalCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*counterWindow
}

type counterWindow struct {
	count   int
	expires time.Time
}

// NewMemoryApprovalCounter constructs the counter.
func NewMemoryApprovalCounter() *MemoryApprovalCounter {
	return &MemoryApprovalCounter{now: time.Now, windows: make(map[string]*counterWindow)}
}

func (c *MemoryApprovalCounter) window(key string) *counterWindow {
	w, ok := c.windows[key]
	if !ok || !c.now().Before(w.expires) {
		return nil
	}
	return w
}

// Reserve takes one slot from key if fewer than limit have been taken in the current window.
func (c *MemoryApprovalCounter) Reserve(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.window(key)
	if w == nil {
		w = &counterWindow{expires: c.now().Add(window)}
		c.windows[key] = w
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Release returns a previously reserved slot.
func (c *MemoryApprovalCounter) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.window(key); w != nil && w.count > 0 {
		w.count--
	}
	return nil
}

// Count returns the slots taken in the current window.
func (c *MemoryApprovalCounter) Count(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w := c.window(key); w != nil {
		return w.count, nil
	}
	return 0, nil
}

// MemoryBatchLock is the single-process counterpart of RedisBatchLock.
type MemoryBatchLock struct {
	mu   sync.Mutex
	now  func() time.Time
	held map[string]lockEntry
}

type lockEntry struct {
	token   string
	expires time.Time
}

// NewMemoryBatchLock constructs the lock.
func NewMemoryBatchLock() *MemoryBatchLock {
	return &MemoryBatchLock{now: time.Now, held: make(map[string]lockEntry)}
}

// Acquire takes the lock for key.
func (l *MemoryBatchLock) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.held[key]; ok && l.now().Before(entry.expires) {
		return nil, false, nil
	}
	token := uuid.NewString()
	l.held[key] = lockEntry{token: token, expires: l.now().Add(ttl)}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if entry, ok := l.held[key]; ok && entry.token == token {
			delete(l.held, key)
		}
	}, true, nil
}

// MemoryPresenceTracker is the single-process counterpart of RedisPresenceTracker.
type MemoryPresenceTracker struct {
	mu   sync.Mutex
	now  func() time.Time
	seen map[string]time.Time
}

// NewMemoryPresenceTracker constructs the tracker.
func NewMemoryPresenceTracker() *MemoryPresenceTracker {
	return &MemoryPresenceTracker{now: time.Now, seen: make(map[string]time.Time)}
}

// Touch marks userID as online for ttl.
func (p *MemoryPresenceTracker) Touch(_ context.Context, userID string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen[userID] = p.now().Add(ttl)
	return nil
}

// AnyOnline reports whether at least one coordinator is online.
func (p *MemoryPresenceTracker) AnyOnline(_ context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for id, expires := range p.seen {
		if now.Before(expires) {
			return true, nil
		}
		delete(p.seen, id)
	}
	return false, nil
}
