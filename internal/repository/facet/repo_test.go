package facet

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
)

type mockQuerier struct {
	rows []db.Row
	err  error
	sql  string
}

func (m *mockQuerier) Query(_ context.Context, sql string, _ ...any) ([]db.Row, error) {
	m.sql = sql
	return m.rows, m.err
}

type mockStore struct {
	q           *mockQuerier
	readErr     error
	hasDeadline bool
}

func (m *mockStore) Read(ctx context.Context, fn func(q db.Querier) error) error {
	_, m.hasDeadline = ctx.Deadline()
	if m.readErr != nil {
		return m.readErr
	}
	return fn(m.q)
}

func TestOptions(t *testing.T) {
	ms := &mockStore{q: &mockQuerier{rows: []db.Row{
		{"id": int64(1), "type": "S", "value": "600000", "label": "浦发银行"},
		{"id": int64(2), "type": "I", "value": "80000031", "label": []byte("中信证券")},
		{"id": int64(3), "type": "I", "value": "80000076", "label": "安信证券"},
	}}}
	r := New(ms, time.Second, zap.NewNop())

	got, err := r.Options(context.Background())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if ms.q.sql != selectOptions {
		t.Errorf("sql = %q", ms.q.sql)
	}
	if !ms.hasDeadline {
		t.Error("store call must carry a deadline")
	}
	if len(got.Stocks) != 1 || got.Stocks[0].Label != "浦发银行 (600000)" {
		t.Errorf("stocks = %+v", got.Stocks)
	}
	if len(got.Institutions) != 2 || got.Institutions[0].Value != "80000076" {
		t.Errorf("institutions = %+v", got.Institutions)
	}
}

func TestOptions_StoreError(t *testing.T) {
	ms := &mockStore{q: &mockQuerier{err: errors.New("no such table: filter_options")}}
	r := New(ms, 0, zap.NewNop())

	_, err := r.Options(context.Background())
	if !errors.Is(err, domain.ErrTransientStore) {
		t.Fatalf("error = %v", err)
	}
	if ms.hasDeadline {
		t.Error("zero timeout must not set a deadline")
	}
}

func TestOptions_BadRow(t *testing.T) {
	ms := &mockStore{q: &mockQuerier{rows: []db.Row{
		{"id": "one", "type": "S", "value": "600000", "label": "浦发银行"},
	}}}
	r := New(ms, 0, zap.NewNop())

	if _, err := r.Options(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDecodeOptions_NullLabel(t *testing.T) {
	_, err := decodeOptions([]db.Row{{"id": int64(1), "type": "S", "value": "1", "label": nil}})
	if err == nil {
		t.Fatal("expected error for NULL label")
	}
}
