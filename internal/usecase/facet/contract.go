package facet

import (
	"context"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domfacet "github.com/kailas-cloud/reportdex/internal/domain/facet"
)

// Repository reads the store-backed vocabularies.
type Repository interface {
	Options(ctx context.Context) (domfacet.Options, error)
}

// Cache is a read-through cache keyed by topic and request key.
type Cache interface {
	Load(
		ctx context.Context, topic domain.Topic, key string, window time.Duration,
		fn func(ctx context.Context) ([]byte, error),
	) ([]byte, bool, error)
}
