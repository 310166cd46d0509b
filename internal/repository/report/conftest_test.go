package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
)

type queryCall struct {
	sql  string
	args []any
}

// mockQuerier records statements and answers page/count queries.
type mockQuerier struct {
	pageRows []db.Row
	count    int64
	queryFn  func(ctx context.Context, sql string, args []any) ([]db.Row, error)
	calls    []queryCall
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) ([]db.Row, error) {
	m.calls = append(m.calls, queryCall{sql: sql, args: args})
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args)
	}
	if strings.HasPrefix(sql, "SELECT COUNT(*)") {
		return []db.Row{{"count": m.count}}, nil
	}
	return m.pageRows, nil
}

// mockStore implements the consumer interface for tests.
type mockStore struct {
	q       *mockQuerier
	readErr error
	reads   int
	lastCtx context.Context
}

func (m *mockStore) Read(ctx context.Context, fn func(q db.Querier) error) error {
	m.reads++
	m.lastCtx = ctx
	if m.readErr != nil {
		return m.readErr
	}
	return fn(m.q)
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{q: &mockQuerier{}}
	return New(ms, time.Second, nil, zap.NewNop()), ms
}

func mustRequest(t *testing.T, p request.Params) request.FilterRequest {
	t.Helper()
	req, err := request.New(p)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func intPtr(n int) *int { return &n }

// fullRow returns a projected row with every column present.
func fullRow(infoCode string) db.Row {
	return db.Row{
		"info_code":      infoCode,
		"title":          "Title " + infoCode,
		"publish_date":   "2024-03-01",
		"report_type":    "1",
		"stock_code":     "600000",
		"stock_name":     "浦发银行",
		"market":         "SHANGHAI",
		"org_code":       "80000031",
		"org_s_name":     "中信证券",
		"author":         "11.张三,12.李四",
		"industry_code":  nil,
		"industry_name":  nil,
		"indv_indu_code": "1046",
		"indv_indu_name": "银行",
		"column":         "001",
		"attach_pages":   int64(12),
		"attach_size":    int64(512),
		"pdf_link":       "https://example.com/" + infoCode + ".pdf",
		"content":        "<p>业绩  符合预期</p>",
	}
}
