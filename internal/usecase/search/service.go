package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

// Service runs filtered report searches behind the documents cache topic.
type Service struct {
	repo   Repository
	cache  Cache
	limits request.Limits
	window time.Duration
}

// New creates a search service. cache can be nil, in which case every
// search goes to the repository.
func New(repo Repository, cache Cache, limits request.Limits, window time.Duration) *Service {
	if window <= 0 {
		window = domain.DefaultDocumentsWindow
	}
	return &Service{repo: repo, cache: cache, limits: limits, window: window}
}

// Window is the freshness window applied to cached search results.
func (s *Service) Window() time.Duration { return s.window }

// Search validates p and returns the JSON-encoded SearchResult. hit reports
// whether the body came from the cache. Validation errors are returned before
// the cache or the store is consulted; failures are never cached.
func (s *Service) Search(ctx context.Context, p request.Params) (body []byte, hit bool, err error) {
	req, err := request.NewWithLimits(p, s.limits)
	if err != nil {
		return nil, false, err
	}

	compute := func(ctx context.Context) ([]byte, error) {
		res, err := s.repo.Search(ctx, req)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encode search result: %w", err)
		}
		return data, nil
	}

	if s.cache == nil {
		body, err = compute(ctx)
		return body, false, err
	}
	return s.cache.Load(ctx, domain.TopicDocuments, req.CanonicalKey(), s.window, compute)
}
