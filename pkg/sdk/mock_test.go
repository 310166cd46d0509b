package reportdex

import (
	"context"

	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
)

type mockSearchUC struct {
	fn   func(ctx context.Context, p request.Params) ([]byte, bool, error)
	last request.Params
}

func (m *mockSearchUC) Search(ctx context.Context, p request.Params) ([]byte, bool, error) {
	m.last = p
	return m.fn(ctx, p)
}

type mockFacetUC struct {
	fn func(ctx context.Context) ([]byte, bool, error)
}

func (m *mockFacetUC) Options(ctx context.Context) ([]byte, bool, error) {
	return m.fn(ctx)
}

type mockRevalidateUC struct {
	fn func(ctx context.Context, tag string) (domain.Topic, error)
}

func (m *mockRevalidateUC) Revalidate(ctx context.Context, tag string) (domain.Topic, error) {
	return m.fn(ctx, tag)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}
