package resultcache

import (
	"context"
	"errors"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Compile-time check: Tiered implements Cache.
var _ Cache = (*Tiered)(nil)

// Tiered puts the edge tier in front of the origin tier. Origin hits are
// copied to the edge; writes and invalidations go to both tiers.
type Tiered struct {
	edge   *Memory
	origin Cache
}

// NewTiered combines an edge and an origin tier.
func NewTiered(edge *Memory, origin Cache) *Tiered {
	return &Tiered{edge: edge, origin: origin}
}

// Get consults the edge first, then the origin. The returned generation
// carries both tiers' counters.
func (t *Tiered) Get(ctx context.Context, topic domain.Topic, key string) (Lookup, error) {
	edge, _ := t.edge.Get(ctx, topic, key)
	if edge.Hit {
		return edge, nil
	}
	origin, err := t.origin.Get(ctx, topic, key)
	if err != nil {
		return Lookup{}, err
	}
	origin.Generation.Edge = edge.Generation.Edge
	if !origin.Hit {
		return origin, nil
	}
	// The edge copy must not outlive the origin entry.
	remaining := origin.Expires.Sub(t.edge.now())
	_ = t.edge.Set(ctx, topic, key, origin.Value, remaining, origin.Generation)
	return origin, nil
}

// Set writes through both tiers. The edge is written even if the origin fails.
func (t *Tiered) Set(
	ctx context.Context, topic domain.Topic, key string, value []byte, window time.Duration, gen Generation,
) error {
	edgeErr := t.edge.Set(ctx, topic, key, value, window, gen)
	return errors.Join(edgeErr, t.origin.Set(ctx, topic, key, value, window, gen))
}

// Invalidate fans out to both tiers.
func (t *Tiered) Invalidate(ctx context.Context, topic domain.Topic) error {
	edgeErr := t.edge.Invalidate(ctx, topic)
	return errors.Join(edgeErr, t.origin.Invalidate(ctx, topic))
}
