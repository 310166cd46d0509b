package resultcache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
)

// mockKVStore is an in-memory kvStore with error injection.
type mockKVStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	incErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return 0, m.incErr
	}
	n, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	n++
	m.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// mockCache is a scripted Cache for loader tests.
type mockCache struct {
	getFn        func(ctx context.Context, topic domain.Topic, key string) (Lookup, error)
	setFn        func(ctx context.Context, topic domain.Topic, key string, value []byte, gen Generation) error
	invalidateFn func(ctx context.Context, topic domain.Topic) error
	sets         atomic.Int32
}

func (m *mockCache) Get(ctx context.Context, topic domain.Topic, key string) (Lookup, error) {
	if m.getFn != nil {
		return m.getFn(ctx, topic, key)
	}
	return Lookup{}, nil
}

func (m *mockCache) Set(
	ctx context.Context, topic domain.Topic, key string, value []byte, _ time.Duration, gen Generation,
) error {
	m.sets.Add(1)
	if m.setFn != nil {
		return m.setFn(ctx, topic, key, value, gen)
	}
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, topic domain.Topic) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, topic)
	}
	return nil
}

func newTestMemory(t *testing.T, size int, maxWindow time.Duration) (*Memory, *fakeClock) {
	t.Helper()
	m, err := NewMemory(size, maxWindow, nil)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	clock := newFakeClock()
	m.now = clock.Now
	return m, clock
}

func newTestRedis(t *testing.T) (*Redis, *mockKVStore, *fakeClock) {
	t.Helper()
	kv := newMockKVStore()
	r := NewRedis(kv, nil)
	clock := newFakeClock()
	r.now = clock.Now
	return r, kv, clock
}

// put writes value the way the loader does: under the generation observed by a lookup.
func put(t *testing.T, c Cache, topic domain.Topic, key, value string, window time.Duration) error {
	t.Helper()
	look, err := c.Get(context.Background(), topic, key)
	if err != nil {
		return err
	}
	return c.Set(context.Background(), topic, key, []byte(value), window, look.Generation)
}

// fetch returns the cached value as a string and whether it hit.
func fetch(c Cache, topic domain.Topic, key string) (string, bool, error) {
	look, err := c.Get(context.Background(), topic, key)
	return string(look.Value), look.Hit, err
}
