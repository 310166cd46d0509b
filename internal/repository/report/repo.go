// Package report executes filtered report searches against the document store.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
	"github.com/kailas-cloud/reportdex/internal/domain/search/mode"
	"github.com/kailas-cloud/reportdex/internal/domain/search/request"
	"github.com/kailas-cloud/reportdex/internal/domain/search/result"
)

// store is the consumer interface for report search (ISP).
type store interface {
	Read(ctx context.Context, fn func(q db.Querier) error) error
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store         store
	timeout       time.Duration
	queryDuration *prometheus.HistogramVec
	logger        *zap.Logger
}

// New creates a report repository. A zero timeout disables the per-call
// deadline. queryDuration (label "statement") may be nil.
func New(s store, timeout time.Duration, queryDuration *prometheus.HistogramVec, logger *zap.Logger) *Repo {
	return &Repo{
		store:         s,
		timeout:       timeout,
		queryDuration: queryDuration,
		logger:        logger,
	}
}

// Search returns one page of matching reports and the total match count.
// Both statements run in one read transaction over an identical predicate.
func (r *Repo) Search(ctx context.Context, req request.FilterRequest) (result.SearchResult, error) {
	stmts := buildStatements(&req)
	searchMode := req.Mode()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var (
		docs  []domreport.Document
		total int
	)
	err := r.store.Read(ctx, func(q db.Querier) error {
		rows, err := r.query(ctx, q, searchMode, "page", stmts.page, stmts.pageArgs)
		if err != nil {
			return err
		}
		if docs, err = decodeDocuments(rows); err != nil {
			return fmt.Errorf("decode page: %w", err)
		}

		rows, err = r.query(ctx, q, searchMode, "count", stmts.count, stmts.countArgs)
		if err != nil {
			return err
		}
		if total, err = decodeCount(rows); err != nil {
			return fmt.Errorf("decode count: %w", err)
		}
		return nil
	})
	if err != nil {
		return result.SearchResult{}, fmt.Errorf("%w: search reports: %w", domain.ErrTransientStore, err)
	}

	return result.New(docs, req.Page(), req.PageSize(), total), nil
}

// query runs one statement, timing it and logging failures without argument values.
func (r *Repo) query(
	ctx context.Context, q db.Querier, searchMode mode.Mode, name, sql string, args []any,
) ([]db.Row, error) {
	start := time.Now()
	rows, err := q.Query(ctx, sql, args...)
	if r.queryDuration != nil {
		r.queryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		r.logger.Error("Report query failed",
			zap.String("statement", name),
			zap.String("mode", string(searchMode)),
			zap.String("sql", sql),
			zap.Int("args", len(args)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s query: %w", name, err)
	}
	return rows, nil
}
