package resultcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Loader is a read-through helper over a Cache. Cache failures never fail a
// load: they are logged and the value is computed directly. Concurrent loads
// of the same key in one process share a single computation.
type Loader struct {
	cache  Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewLoader creates a read-through loader.
func NewLoader(c Cache, logger *zap.Logger) *Loader {
	return &Loader{cache: c, logger: logger}
}

// Load returns the cached value for key, or computes it with fn and stores it
// for window. hit reports whether the value came from the cache.
// Errors from fn are returned unchanged and never cached.
//
// The shared computation runs detached from any single caller: a caller whose
// ctx ends gets ctx.Err() while the others still receive the result. fn is
// expected to bound itself (the store adapters apply their query timeout).
func (l *Loader) Load(
	ctx context.Context, topic domain.Topic, key string, window time.Duration,
	fn func(ctx context.Context) ([]byte, error),
) (value []byte, hit bool, err error) {
	look, err := l.cache.Get(ctx, topic, key)
	if err != nil {
		l.logger.Warn("Cache read failed, computing directly",
			zap.String("topic", string(topic)),
			zap.Error(errors.Join(domain.ErrCacheUnavailable, err)),
		)
	} else if look.Hit {
		return look.Value, true, nil
	}
	writable := err == nil

	// Loads that saw different generations never share a computation.
	flight := string(topic) + "\x00" + look.Generation.String() + "\x00" + key
	detached := context.WithoutCancel(ctx)
	ch := l.group.DoChan(flight, func() (any, error) {
		data, err := fn(detached)
		if err != nil {
			return nil, err
		}
		if writable {
			l.store(detached, topic, key, data, window, look.Generation)
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		data, ok := res.Val.([]byte)
		if !ok {
			return nil, false, fmt.Errorf("unexpected loader value %T", res.Val)
		}
		return data, false, nil
	}
}

// Invalidate discards every entry of topic.
func (l *Loader) Invalidate(ctx context.Context, topic domain.Topic) error {
	if err := l.cache.Invalidate(ctx, topic); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheUnavailable, err)
	}
	return nil
}

func (l *Loader) store(
	ctx context.Context, topic domain.Topic, key string, data []byte, window time.Duration, gen Generation,
) {
	if err := l.cache.Set(ctx, topic, key, data, window, gen); err != nil {
		l.logger.Warn("Cache write failed",
			zap.String("topic", string(topic)),
			zap.Error(errors.Join(domain.ErrCacheUnavailable, err)),
		)
	}
}
