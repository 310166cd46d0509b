package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Compile-time check: Redis implements Cache.
var _ Cache = (*Redis)(nil)

var keyPrefix = domain.KeyPrefix + "cache:"

// kvStore is the consumer interface for the origin tier (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Redis is the shared origin tier. Entries live under
// reportdex:cache:<topic>:<generation>:<sha256(key)> with a TTL equal to their
// window; the topic generation lives under reportdex:cache:gen:<topic>.
// Invalidation increments the generation, orphaning older keys until they expire.
type Redis struct {
	store      kvStore
	cacheTotal *prometheus.CounterVec
	now        func() time.Time
}

// NewRedis creates the origin tier over a key-value store.
func NewRedis(s kvStore, cacheTotal *prometheus.CounterVec) *Redis {
	return &Redis{store: s, cacheTotal: cacheTotal, now: time.Now}
}

// Get reads the entry written under the topic's current generation.
func (r *Redis) Get(ctx context.Context, topic domain.Topic, key string) (Lookup, error) {
	gen, err := r.generation(ctx, topic)
	if err != nil {
		incCache(r.cacheTotal, topic, TierOrigin, "error")
		return Lookup{}, err
	}
	miss := Lookup{Generation: Generation{Origin: gen}}

	data, err := r.store.Get(ctx, entryKey(topic, gen, key))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			incCache(r.cacheTotal, topic, TierOrigin, "miss")
			return miss, nil
		}
		incCache(r.cacheTotal, topic, TierOrigin, "error")
		return Lookup{}, fmt.Errorf("get entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		incCache(r.cacheTotal, topic, TierOrigin, "error")
		return Lookup{}, fmt.Errorf("decode entry: %w", err)
	}
	if !e.Fresh(r.now(), gen) {
		incCache(r.cacheTotal, topic, TierOrigin, "miss")
		return miss, nil
	}
	incCache(r.cacheTotal, topic, TierOrigin, "hit")
	return Lookup{Value: e.Value, Hit: true, Generation: miss.Generation, Expires: e.Expires()}, nil
}

// Set writes the entry under gen.Origin with TTL = window. If the topic has
// moved past gen the key is already unreachable and simply expires.
func (r *Redis) Set(
	ctx context.Context, topic domain.Topic, key string, value []byte, window time.Duration, gen Generation,
) error {
	if window < time.Second {
		return nil
	}
	data, err := json.Marshal(Entry{
		Topic:      topic,
		Generation: gen.Origin,
		CreatedAt:  r.now(),
		Window:     window,
		Value:      value,
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, entryKey(topic, gen.Origin, key), data, window); err != nil {
		return fmt.Errorf("set entry: %w", err)
	}
	return nil
}

// Invalidate advances the topic generation.
func (r *Redis) Invalidate(ctx context.Context, topic domain.Topic) error {
	if _, err := r.store.Incr(ctx, generationKey(topic)); err != nil {
		return fmt.Errorf("invalidate %s: %w", topic, err)
	}
	return nil
}

func (r *Redis) generation(ctx context.Context, topic domain.Topic) (int64, error) {
	data, err := r.store.Get(ctx, generationKey(topic))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get generation: %w", err)
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation %q: %w", data, err)
	}
	return gen, nil
}

func generationKey(topic domain.Topic) string {
	return keyPrefix + "gen:" + string(topic)
}

func entryKey(topic domain.Topic, gen int64, key string) string {
	return keyPrefix + string(topic) + ":" + strconv.FormatInt(gen, 10) + ":" + hashKey(key)
}
