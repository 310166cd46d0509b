package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
	"github.com/kailas-cloud/reportdex/internal/repository/resultcache"
)

// --- Mocks ---

type mockRepo struct {
	total int
	err   error
	calls int
	last  request.FilterRequest
}

func (m *mockRepo) Search(_ context.Context, req request.FilterRequest) (result.SearchResult, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return result.SearchResult{}, m.err
	}
	n := min(req.PageSize(), m.total)
	docs := make([]report.Document, n)
	for i := range docs {
		docs[i] = report.Document{ID: "AP" + string(rune('A'+i)), Authors: []string{}, AuthorNames: []string{}}
	}
	return result.New(docs, req.Page(), req.PageSize(), m.total), nil
}

// mapCache is a trivial read-through cache without expiry.
type mapCache struct {
	entries map[string][]byte
	topics  []domain.Topic
	windows []time.Duration
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (m *mapCache) Load(
	ctx context.Context, topic domain.Topic, key string, window time.Duration,
	fn func(ctx context.Context) ([]byte, error),
) ([]byte, bool, error) {
	m.topics = append(m.topics, topic)
	m.windows = append(m.windows, window)
	if v, ok := m.entries[key]; ok {
		return v, true, nil
	}
	v, err := fn(ctx)
	if err != nil {
		return nil, false, err
	}
	m.entries[key] = v
	return v, false, nil
}

// --- Tests ---

func TestSearch_EncodesResult(t *testing.T) {
	repo := &mockRepo{total: 45}
	svc := New(repo, nil, request.DefaultLimits(), 0)

	body, hit, err := svc.Search(context.Background(), request.Params{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hit {
		t.Error("no cache configured, hit must be false")
	}

	var got struct {
		Data       []json.RawMessage `json:"data"`
		Pagination result.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Pagination.TotalPages != 3 || got.Pagination.CurrentPage != 3 || got.Pagination.TotalItems != 45 {
		t.Errorf("pagination = %+v", got.Pagination)
	}
	if len(got.Data) > got.Pagination.PageSize {
		t.Errorf("page holds %d documents, size %d", len(got.Data), got.Pagination.PageSize)
	}
}

func TestSearch_ValidationSkipsCacheAndStore(t *testing.T) {
	repo := &mockRepo{}
	cache := newMapCache()
	svc := New(repo, cache, request.DefaultLimits(), time.Minute)

	_, _, err := svc.Search(context.Background(), request.Params{ContentQuery: "银行 A"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v", err)
	}
	msg, ok := domain.ValidationMessage(err)
	if !ok || msg == "" {
		t.Errorf("missing client message: %v", err)
	}
	if repo.calls != 0 || len(cache.topics) != 0 {
		t.Error("invalid request must not reach the cache or the store")
	}
}

func TestSearch_CachesUnderDocumentsTopic(t *testing.T) {
	repo := &mockRepo{total: 2}
	cache := newMapCache()
	svc := New(repo, cache, request.DefaultLimits(), 7*time.Minute)
	ctx := context.Background()

	first, hit, err := svc.Search(ctx, request.Params{
		Facets: map[request.Facet][]string{request.FacetOrg: {"b", "a"}},
	})
	if err != nil || hit {
		t.Fatalf("first = %v %v", hit, err)
	}
	second, hit, err := svc.Search(ctx, request.Params{
		Facets: map[request.Facet][]string{request.FacetOrg: {"a", "b", "a"}},
	})
	if err != nil || !hit {
		t.Fatalf("equivalent request should hit: %v %v", hit, err)
	}
	if string(first) != string(second) {
		t.Error("cached body must be byte-identical")
	}
	if repo.calls != 1 {
		t.Errorf("store calls = %d", repo.calls)
	}
	if cache.topics[0] != domain.TopicDocuments || cache.windows[0] != 7*time.Minute {
		t.Errorf("topic %q window %v", cache.topics[0], cache.windows[0])
	}
}

func TestSearch_StoreErrorNotCached(t *testing.T) {
	repo := &mockRepo{err: errors.Join(domain.ErrTransientStore, errors.New("timeout"))}
	cache := newMapCache()
	svc := New(repo, cache, request.DefaultLimits(), time.Minute)

	if _, _, err := svc.Search(context.Background(), request.Params{}); !errors.Is(err, domain.ErrTransientStore) {
		t.Fatalf("error = %v", err)
	}
	if len(cache.entries) != 0 {
		t.Error("failures must not be cached")
	}
}

func TestSearch_LimitsApplied(t *testing.T) {
	repo := &mockRepo{total: 500}
	svc := New(repo, nil, request.Limits{DefaultPageSize: 10, MaxPageSize: 50}, 0)

	if _, _, err := svc.Search(context.Background(), request.Params{}); err != nil {
		t.Fatal(err)
	}
	if repo.last.PageSize() != 10 {
		t.Errorf("default page size = %d", repo.last.PageSize())
	}
	if _, _, err := svc.Search(context.Background(), request.Params{PageSize: 1000}); err != nil {
		t.Fatal(err)
	}
	if repo.last.PageSize() != 50 {
		t.Errorf("clamped page size = %d", repo.last.PageSize())
	}
}

func TestSearch_DefaultWindow(t *testing.T) {
	svc := New(&mockRepo{}, nil, request.DefaultLimits(), 0)
	if svc.Window() != domain.DefaultDocumentsWindow {
		t.Errorf("window = %v", svc.Window())
	}
}

func TestSearch_InvalidationRecomputes(t *testing.T) {
	edge, err := resultcache.NewMemory(64, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	loader := resultcache.NewLoader(edge, zap.NewNop())
	repo := &mockRepo{total: 1}
	svc := New(repo, loader, request.DefaultLimits(), time.Hour)
	ctx := context.Background()
	p := request.Params{ContentQuery: "宏观经济"}

	_, _, _ = svc.Search(ctx, p)
	if _, hit, _ := svc.Search(ctx, p); !hit {
		t.Fatal("second identical request should hit")
	}

	if err := loader.Invalidate(ctx, domain.TopicDocuments); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := svc.Search(ctx, p); hit {
		t.Error("request after invalidation must recompute")
	}
	if repo.calls != 2 {
		t.Errorf("store calls = %d, want 2", repo.calls)
	}
}
