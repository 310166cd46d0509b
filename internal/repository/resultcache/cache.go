// Package resultcache implements the topic-scoped result cache: an in-process
// edge tier, a Redis origin tier, and the read-through Loader in front of them.
//
// Invalidation is topic-wide only. Each topic carries a generation counter;
// entries record the generation they were written under and are stale as soon
// as the counter moves on, regardless of their freshness window.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Cache is a byte cache partitioned by topic.
type Cache interface {
	// Get looks key up under the topic's current generation.
	Get(ctx context.Context, topic domain.Topic, key string) (Lookup, error)
	// Set replaces the entry for key if gen is still the topic's generation.
	// The entry stays fresh for window or until the topic is invalidated.
	Set(ctx context.Context, topic domain.Topic, key string, value []byte, window time.Duration, gen Generation) error
	// Invalidate makes every current entry of topic stale.
	Invalidate(ctx context.Context, topic domain.Topic) error
}

// Generation is the topic generation a lookup observed, one counter per tier.
type Generation struct {
	Edge   int64
	Origin int64
}

func (g Generation) String() string {
	return strconv.FormatInt(g.Edge, 10) + "/" + strconv.FormatInt(g.Origin, 10)
}

// Lookup is the outcome of Cache.Get. Generation is set on hits and misses:
// a value computed after a miss is written back under it, so a computation
// that straddles an invalidation never lands as a fresh entry.
type Lookup struct {
	Value      []byte
	Hit        bool
	Generation Generation
	// Expires is when a hit stops being fresh.
	Expires time.Time
}

// Entry is one cached value with its freshness metadata. Replaced wholesale, never patched.
type Entry struct {
	Topic      domain.Topic  `json:"topic"`
	Generation int64         `json:"generation"`
	CreatedAt  time.Time     `json:"createdAt"`
	Window     time.Duration `json:"window"`
	Value      []byte        `json:"value"`
}

// Expires returns the end of the freshness window.
func (e *Entry) Expires() time.Time {
	return e.CreatedAt.Add(e.Window)
}

// Fresh reports whether the entry is still servable at now under the given topic generation.
func (e *Entry) Fresh(now time.Time, generation int64) bool {
	return e.Generation == generation && now.Before(e.Expires())
}

// Tier labels for metrics.
const (
	TierEdge   = "edge"
	TierOrigin = "origin"
)

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func incCache(cacheTotal *prometheus.CounterVec, topic domain.Topic, tier, result string) {
	if cacheTotal != nil {
		cacheTotal.WithLabelValues(string(topic), tier, result).Inc()
	}
}
