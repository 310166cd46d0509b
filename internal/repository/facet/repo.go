// Package facet reads the dynamic facet vocabularies from the document store.
package facet

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
	domfacet "github.com/kailas-cloud/reportdex/internal/domain/facet"
)

const selectOptions = "SELECT id, type, value, label FROM filter_options"

// store is the consumer interface for facet reads (ISP).
type store interface {
	Read(ctx context.Context, fn func(q db.Querier) error) error
}

// Repo implements usecase/facet.Repository.
type Repo struct {
	store   store
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a facet repository. A zero timeout disables the per-call deadline.
func New(s store, timeout time.Duration, logger *zap.Logger) *Repo {
	return &Repo{store: s, timeout: timeout, logger: logger}
}

// Options returns the stock and institution vocabularies, sorted by label.
func (r *Repo) Options(ctx context.Context) (domfacet.Options, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stored []domfacet.Stored
	err := r.store.Read(ctx, func(q db.Querier) error {
		rows, err := q.Query(ctx, selectOptions)
		if err != nil {
			return err
		}
		stored, err = decodeOptions(rows)
		return err
	})
	if err != nil {
		r.logger.Error("Facet query failed", zap.String("sql", selectOptions), zap.Error(err))
		return domfacet.Options{}, fmt.Errorf("%w: read facet options: %w", domain.ErrTransientStore, err)
	}
	return domfacet.Build(stored), nil
}

func decodeOptions(rows []db.Row) ([]domfacet.Stored, error) {
	out := make([]domfacet.Stored, 0, len(rows))
	for i, row := range rows {
		id, ok := row["id"].(int64)
		if !ok {
			return nil, fmt.Errorf("row %d: id: unexpected %T", i, row["id"])
		}
		kind, err := text(row, "type")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		value, err := text(row, "value")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		label, err := text(row, "label")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, domfacet.Stored{ID: id, Kind: domfacet.Kind(kind), Value: value, Label: label})
	}
	return out, nil
}

func text(row db.Row, col string) (string, error) {
	switch v := row[col].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s: unexpected %T", col, v)
	}
}
