package resultcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Compile-time check: Memory implements Cache.
var _ Cache = (*Memory)(nil)

// Memory is the in-process edge tier: a bounded LRU with per-topic generations.
// Safe for concurrent use.
type Memory struct {
	entries    *lru.Cache[string, Entry]
	maxWindow  time.Duration
	cacheTotal *prometheus.CounterVec
	now        func() time.Time

	mu          sync.Mutex
	generations map[domain.Topic]int64
}

// NewMemory creates an edge cache holding at most size entries. A positive
// maxWindow caps every entry's freshness window; zero leaves windows as given.
func NewMemory(size int, maxWindow time.Duration, cacheTotal *prometheus.CounterVec) (*Memory, error) {
	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Memory{
		entries:     entries,
		maxWindow:   maxWindow,
		cacheTotal:  cacheTotal,
		now:         time.Now,
		generations: make(map[domain.Topic]int64),
	}, nil
}

// Get returns a fresh entry. Stale entries are evicted on sight.
func (m *Memory) Get(_ context.Context, topic domain.Topic, key string) (Lookup, error) {
	gen := m.generation(topic)
	miss := Lookup{Generation: Generation{Edge: gen}}
	k := memoryKey(topic, key)
	e, ok := m.entries.Get(k)
	if !ok {
		incCache(m.cacheTotal, topic, TierEdge, "miss")
		return miss, nil
	}
	if !e.Fresh(m.now(), gen) {
		m.entries.Remove(k)
		incCache(m.cacheTotal, topic, TierEdge, "miss")
		return miss, nil
	}
	incCache(m.cacheTotal, topic, TierEdge, "hit")
	return Lookup{Value: e.Value, Hit: true, Generation: miss.Generation, Expires: e.Expires()}, nil
}

// Set stores value under gen.Edge. Writes for a superseded generation are dropped.
func (m *Memory) Set(
	_ context.Context, topic domain.Topic, key string, value []byte, window time.Duration, gen Generation,
) error {
	if m.maxWindow > 0 && window > m.maxWindow {
		window = m.maxWindow
	}
	if window <= 0 || gen.Edge != m.generation(topic) {
		return nil
	}
	m.entries.Add(memoryKey(topic, key), Entry{
		Topic:      topic,
		Generation: gen.Edge,
		CreatedAt:  m.now(),
		Window:     window,
		Value:      value,
	})
	return nil
}

// Invalidate bumps the topic generation; old entries are dropped lazily.
func (m *Memory) Invalidate(_ context.Context, topic domain.Topic) error {
	m.mu.Lock()
	m.generations[topic]++
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, stale ones included.
func (m *Memory) Len() int {
	return m.entries.Len()
}

func (m *Memory) generation(topic domain.Topic) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[topic]
}

func memoryKey(topic domain.Topic, key string) string {
	return string(topic) + "\x00" + key
}
