// Package facet serves the filter vocabularies behind the facet-options cache topic.
package facet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain"
	domfacet "github.com/kailas-cloud/reportdex/internal/domain/facet"
)

// cacheKey is the only entry of the facet-options topic.
const cacheKey = "GET /api/filter-options"

// Static holds the configured code-to-label vocabularies.
type Static struct {
	Industries []domfacet.Option
	Columns    []domfacet.Option
}

// Service combines store-backed and configured vocabularies.
type Service struct {
	repo   Repository
	cache  Cache
	static Static
	window time.Duration
}

// New creates a facet service. cache can be nil.
func New(repo Repository, cache Cache, static Static, window time.Duration) *Service {
	if window <= 0 {
		window = domain.DefaultFacetOptionsWindow
	}
	return &Service{
		repo:  repo,
		cache: cache,
		static: Static{
			Industries: domfacet.SortStatic(static.Industries),
			Columns:    domfacet.SortStatic(static.Columns),
		},
		window: window,
	}
}

// Window is the freshness window applied to the cached vocabulary.
func (s *Service) Window() time.Duration { return s.window }

// Options returns the JSON-encoded vocabulary and whether it came from the cache.
func (s *Service) Options(ctx context.Context) (body []byte, hit bool, err error) {
	if s.cache == nil {
		body, err = s.compute(ctx)
		return body, false, err
	}
	return s.cache.Load(ctx, domain.TopicFacetOptions, cacheKey, s.window, s.compute)
}

func (s *Service) compute(ctx context.Context) ([]byte, error) {
	opts, err := s.repo.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("load facet options: %w", err)
	}
	opts.Industries = s.static.Industries
	opts.Columns = s.static.Columns

	data, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode facet options: %w", err)
	}
	return data, nil
}
