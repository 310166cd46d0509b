package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// Repository defines the storage contract for report search.
type Repository interface {
	Search(ctx context.Context, req request.FilterRequest) (result.SearchResult, error)
}

// Cache is a read-through cache keyed by topic and request key.
type Cache interface {
	Load(
		ctx context.Context, topic domain.Topic, key string, window time.Duration,
		fn func(ctx context.Context) ([]byte, error),
	) ([]byte, bool, error)
}
