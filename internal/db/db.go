package db

import (
	"context"
	"time"
)

// Row is a single result row keyed by column name.
// Values are whatever the driver returns: int64, float64, string, []byte or nil.
type Row map[string]any

// Store is the relational document store facade.
type Store interface {
	Pinger
	Reader
	Close() error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Reader runs a group of statements inside one read-only transaction,
// so that every statement observes the same snapshot.
type Reader interface {
	Read(ctx context.Context, fn func(q Querier) error) error
}

// Querier executes a parameterized SELECT and materializes all rows.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
}

// KVStore provides simple key-value operations with expiry.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}
